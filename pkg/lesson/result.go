package lesson

import (
	"time"

	"digital.vasic.lessons/pkg/assertion"
)

// Status constants for run outcomes.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusError   = "error"
)

// Result captures the outcome of running one submission against
// one lesson's assertions.
type Result struct {
	LessonID    string             `json:"lesson_id"`
	LessonTitle string             `json:"lesson_title"`
	Status      string             `json:"status"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	Duration    time.Duration      `json:"duration"`
	Assertions  []assertion.Result `json:"assertions"`

	// Error is set when the run itself could not happen, e.g. an
	// unknown lesson.
	Error string `json:"error,omitempty"`
}

// AllPassed reports whether every result passed. It is vacuously
// true for an empty sequence; use a CompletionPolicy to decide
// whether that completes a lesson.
func AllPassed(results []assertion.Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// AllPassed reports whether every assertion of the run passed.
func (r *Result) AllPassed() bool {
	return AllPassed(r.Assertions)
}

// PassedCount returns the number of passing assertions.
func (r *Result) PassedCount() int {
	n := 0
	for _, a := range r.Assertions {
		if a.Passed {
			n++
		}
	}
	return n
}

// IsFinal returns true if the status is a terminal state.
func (r *Result) IsFinal() bool {
	switch r.Status {
	case StatusPassed, StatusFailed, StatusError:
		return true
	}
	return false
}
