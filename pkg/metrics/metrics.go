// Package metrics records run, assertion and completion metrics.
package metrics

import "time"

// Assertion outcome labels.
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
	OutcomeError  = "error"
)

// Recorder defines the interface for recording lesson metrics.
type Recorder interface {
	// RecordRun records one suite run of a lesson.
	RecordRun(lessonID, status string, duration time.Duration)
	// RecordAssertion records one assertion evaluation.
	RecordAssertion(lessonID, kind, outcome string)
	// RecordCompletion records a lesson completed for the first
	// time by a user.
	RecordCompletion(lessonID string)
	// RunStarted increments the active runs gauge.
	RunStarted()
	// RunFinished decrements the active runs gauge.
	RunFinished()
}

// NoopMetrics is a no-op implementation of Recorder useful for
// testing or when metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordRun(_, _ string, _ time.Duration) {}
func (NoopMetrics) RecordAssertion(_, _, _ string)         {}
func (NoopMetrics) RecordCompletion(_ string)              {}
func (NoopMetrics) RunStarted()                            {}
func (NoopMetrics) RunFinished()                           {}

// Outcome maps an assertion result onto an outcome label.
func Outcome(passed bool, errMsg string) string {
	switch {
	case passed:
		return OutcomePassed
	case errMsg != "":
		return OutcomeError
	default:
		return OutcomeFailed
	}
}
