package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"digital.vasic.lessons/pkg/logging"
	"digital.vasic.lessons/pkg/metrics"
	"digital.vasic.lessons/pkg/report"
	"digital.vasic.lessons/pkg/runner"
)

const historyFile = "history.jsonl"

func runVerify(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Close() }()

	lessons := a.bank.AllLessons()
	results, err := a.newRunner(metrics.NoopMetrics{}).VerifySolutions(cmd.Context(), lessons, concurrency)
	if err != nil {
		return err
	}

	summary := report.BuildMasterSummary(results)
	jsonPath, mdPath, err := report.SaveMasterSummary(summary, outputDir)
	if err != nil {
		return err
	}
	if err := report.AppendToHistory(filepath.Join(outputDir, historyFile), summary.ID, results...); err != nil {
		return err
	}
	a.logger.Info("verification summary saved",
		logging.StringField("json", jsonPath),
		logging.StringField("markdown", mdPath),
	)

	fmt.Fprint(cmd.OutOrStdout(), report.SummaryMarkdown(summary))

	if failed := runner.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d reference solutions failed", len(failed), len(results))
	}
	return nil
}
