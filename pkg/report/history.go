package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"digital.vasic.lessons/pkg/lesson"
)

// HistoricalEntry is one run in the history log.
type HistoricalEntry struct {
	Timestamp        time.Time `json:"timestamp"`
	LessonID         string    `json:"lesson_id"`
	Status           string    `json:"status"`
	Duration         string    `json:"duration"`
	AssertionsPassed int       `json:"assertions_passed"`
	AssertionsTotal  int       `json:"assertions_total"`
	SummaryID        string    `json:"summary_id,omitempty"`
}

// AppendToHistory appends one JSON line per result to the log at
// historyPath.
func AppendToHistory(historyPath, summaryID string, results ...*lesson.Result) error {
	file, err := os.OpenFile(historyPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	enc := json.NewEncoder(file)
	for _, r := range results {
		entry := HistoricalEntry{
			Timestamp:        r.EndTime,
			LessonID:         r.LessonID,
			Status:           r.Status,
			Duration:         r.Duration.String(),
			AssertionsPassed: r.PassedCount(),
			AssertionsTotal:  len(r.Assertions),
			SummaryID:        summaryID,
		}
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("failed to write history entry: %w", err)
		}
	}
	return nil
}
