// Package report renders lesson run results as JSON reports and
// produces master summaries of solution verification sweeps.
package report

import (
	"io"

	"digital.vasic.lessons/pkg/lesson"
)

// Reporter defines the interface for generating run reports.
type Reporter interface {
	// GenerateReport creates a report for a single run result.
	GenerateReport(result *lesson.Result) ([]byte, error)

	// GenerateMasterSummary creates a summary of all run results.
	GenerateMasterSummary(results []*lesson.Result) ([]byte, error)

	// WriteReport writes a report to the specified writer.
	WriteReport(w io.Writer, result *lesson.Result) error
}
