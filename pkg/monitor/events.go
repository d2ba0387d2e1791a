// Package monitor collects lesson run events and streams them to
// WebSocket clients.
package monitor

import "time"

// EventType represents the type of run event.
type EventType string

const (
	EventStarted   EventType = "started"
	EventPassed    EventType = "passed"
	EventFailed    EventType = "failed"
	EventErrored   EventType = "error"
	EventCompleted EventType = "completed"
)

// RunEvent is a lifecycle event of one lesson run.
type RunEvent struct {
	Type      EventType     `json:"type"`
	LessonID  string        `json:"lesson_id"`
	Title     string        `json:"title,omitempty"`
	Status    string        `json:"status,omitempty"`
	Message   string        `json:"message,omitempty"`
	Passed    int           `json:"passed"`
	Total     int           `json:"total"`
	Duration  time.Duration `json:"duration,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
