package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"digital.vasic.lessons/pkg/lesson"
)

// MasterSummary is an aggregated summary of a set of lesson runs,
// typically a reference solution sweep.
type MasterSummary struct {
	ID            string          `json:"id"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Lessons       []LessonSummary `json:"lessons"`
	TotalLessons  int             `json:"total_lessons"`
	PassedLessons int             `json:"passed_lessons"`
	FailedLessons int             `json:"failed_lessons"`
	TotalDuration time.Duration   `json:"total_duration"`
	PassRate      float64         `json:"pass_rate"`
}

// LessonSummary summarises one lesson run.
type LessonSummary struct {
	LessonID         string          `json:"lesson_id"`
	LessonTitle      string          `json:"lesson_title"`
	Status           string          `json:"status"`
	Duration         time.Duration   `json:"duration"`
	AssertionsPassed int             `json:"assertions_passed"`
	AssertionsTotal  int             `json:"assertions_total"`
	Error            string          `json:"error,omitempty"`
	Failures         []FailureDetail `json:"failures,omitempty"`
}

// FailureDetail describes one assertion that did not pass.
type FailureDetail struct {
	Description string `json:"description"`
	Error       string `json:"error,omitempty"`
}

// BuildMasterSummary creates a master summary from run results.
func BuildMasterSummary(results []*lesson.Result) *MasterSummary {
	summary := &MasterSummary{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Lessons:     make([]LessonSummary, 0, len(results)),
	}

	for _, r := range results {
		ls := LessonSummary{
			LessonID:         r.LessonID,
			LessonTitle:      r.LessonTitle,
			Status:           r.Status,
			Duration:         r.Duration,
			AssertionsPassed: r.PassedCount(),
			AssertionsTotal:  len(r.Assertions),
			Error:            r.Error,
		}
		for _, a := range r.Assertions {
			if !a.Passed {
				ls.Failures = append(ls.Failures, FailureDetail{
					Description: a.Description,
					Error:       a.Error,
				})
			}
		}

		summary.Lessons = append(summary.Lessons, ls)
		summary.TotalLessons++
		summary.TotalDuration += r.Duration
		if r.Status == lesson.StatusPassed {
			summary.PassedLessons++
		} else {
			summary.FailedLessons++
		}
	}

	if summary.TotalLessons > 0 {
		summary.PassRate = float64(summary.PassedLessons) / float64(summary.TotalLessons)
	}
	return summary
}

// SaveMasterSummary writes the summary as JSON and Markdown into
// outputDir and points latest_summary.{json,md} at them. It returns
// the paths of the two files.
func SaveMasterSummary(summary *MasterSummary, outputDir string) (string, string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}

	ts := summary.GeneratedAt.Format("20060102_150405")

	jsonPath := filepath.Join(outputDir, fmt.Sprintf("master_summary_%s.json", ts))
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write JSON summary: %w", err)
	}

	mdPath := filepath.Join(outputDir, fmt.Sprintf("master_summary_%s.md", ts))
	if err := os.WriteFile(mdPath, []byte(SummaryMarkdown(summary)), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write Markdown summary: %w", err)
	}

	latestJSON := filepath.Join(outputDir, "latest_summary.json")
	latestMD := filepath.Join(outputDir, "latest_summary.md")
	_ = os.Remove(latestJSON)
	_ = os.Remove(latestMD)
	_ = os.Symlink(filepath.Base(jsonPath), latestJSON)
	_ = os.Symlink(filepath.Base(mdPath), latestMD)

	return jsonPath, mdPath, nil
}

// SummaryMarkdown renders a master summary as Markdown.
func SummaryMarkdown(summary *MasterSummary) string {
	var sb strings.Builder

	sb.WriteString("# Lesson Verification Summary\n\n")
	fmt.Fprintf(&sb, "**Summary ID:** %s\n\n", summary.ID)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", summary.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Lesson | Status | Duration | Assertions |\n")
	sb.WriteString("|--------|--------|----------|------------|\n")
	for _, l := range summary.Lessons {
		fmt.Fprintf(&sb, "| %s (%s) | %s | %v | %d/%d |\n",
			escapeCell(l.LessonTitle), l.LessonID,
			strings.ToUpper(l.Status), l.Duration,
			l.AssertionsPassed, l.AssertionsTotal,
		)
	}

	var failing []LessonSummary
	for _, l := range summary.Lessons {
		if len(l.Failures) > 0 || l.Error != "" {
			failing = append(failing, l)
		}
	}
	if len(failing) > 0 {
		sb.WriteString("\n## Failures\n\n")
		for _, l := range failing {
			fmt.Fprintf(&sb, "### %s\n\n", l.LessonID)
			if l.Error != "" {
				fmt.Fprintf(&sb, "- run error: %s\n", l.Error)
			}
			for _, f := range l.Failures {
				if f.Error != "" {
					fmt.Fprintf(&sb, "- %s: `%s`\n", f.Description, f.Error)
				} else {
					fmt.Fprintf(&sb, "- %s\n", f.Description)
				}
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Total Lessons | %d |\n", summary.TotalLessons)
	fmt.Fprintf(&sb, "| Passed | %d |\n", summary.PassedLessons)
	fmt.Fprintf(&sb, "| Failed | %d |\n", summary.FailedLessons)
	fmt.Fprintf(&sb, "| Pass Rate | %.0f%% |\n", summary.PassRate*100)
	fmt.Fprintf(&sb, "| Total Duration | %v |\n", summary.TotalDuration)

	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
