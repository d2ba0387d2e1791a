package report

import (
	"encoding/json"
	"io"

	"digital.vasic.lessons/pkg/lesson"
)

// JSONReporter generates JSON reports from run results.
type JSONReporter struct {
	pretty bool
}

// NewJSONReporter creates a new JSON reporter. When pretty is
// true, output is indented for readability.
func NewJSONReporter(pretty bool) *JSONReporter {
	return &JSONReporter{pretty: pretty}
}

func (r *JSONReporter) marshal(v any) ([]byte, error) {
	if r.pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// GenerateReport creates a JSON report for a single run result.
func (r *JSONReporter) GenerateReport(result *lesson.Result) ([]byte, error) {
	return r.marshal(result)
}

// GenerateMasterSummary creates a JSON summary of all run results.
func (r *JSONReporter) GenerateMasterSummary(results []*lesson.Result) ([]byte, error) {
	return r.marshal(BuildMasterSummary(results))
}

// WriteReport writes a JSON report to the specified writer.
func (r *JSONReporter) WriteReport(w io.Writer, result *lesson.Result) error {
	data, err := r.GenerateReport(result)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
