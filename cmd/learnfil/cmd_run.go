package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"digital.vasic.lessons/pkg/lesson"
	"digital.vasic.lessons/pkg/metrics"
	"digital.vasic.lessons/pkg/report"
)

func runLesson(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Close() }()

	l, ok := a.bank.Lesson(args[0])
	if !ok {
		return fmt.Errorf("unknown lesson: %s", args[0])
	}

	code := l.SolutionCode
	if !useSolution {
		code, err = readSubmission(cmd.InOrStdin(), args[1:])
		if err != nil {
			return err
		}
	}

	res := a.newRunner(metrics.NoopMetrics{}).RunLesson(cmd.Context(), l, code)
	if err := report.NewJSONReporter(true).WriteReport(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if res.Status != lesson.StatusPassed {
		return fmt.Errorf("lesson %s: %s (%d/%d assertions passed)",
			l.ID, res.Status, res.PassedCount(), len(res.Assertions))
	}
	return nil
}

func readSubmission(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read submission: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("submission file not found: %s", args[0])
		}
		return "", fmt.Errorf("read submission: %w", err)
	}
	return string(data), nil
}
