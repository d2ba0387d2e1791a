package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.lessons/pkg/assertion"
	"digital.vasic.lessons/pkg/lesson"
)

func sampleResults() []*lesson.Result {
	end := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return []*lesson.Result{
		{
			LessonID: "lesson-1-1", LessonTitle: "What is a CID?",
			Status: lesson.StatusPassed, EndTime: end, Duration: 20 * time.Millisecond,
			Assertions: []assertion.Result{
				{Description: "v0", Passed: true},
				{Description: "v1", Passed: true},
			},
		},
		{
			LessonID: "lesson-3-1", LessonTitle: "FVM | Intro",
			Status: lesson.StatusFailed, EndTime: end, Duration: 30 * time.Millisecond,
			Assertions: []assertion.Result{
				{Description: "creates deal", Passed: true},
				{Description: "null for missing", Passed: false, Error: "boom"},
				{Description: "falsy", Passed: false},
			},
		},
	}
}

func TestBuildMasterSummary(t *testing.T) {
	s := BuildMasterSummary(sampleResults())

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 2, s.TotalLessons)
	assert.Equal(t, 1, s.PassedLessons)
	assert.Equal(t, 1, s.FailedLessons)
	assert.Equal(t, 50*time.Millisecond, s.TotalDuration)
	assert.InDelta(t, 0.5, s.PassRate, 0.0001)

	require.Len(t, s.Lessons, 2)
	assert.Equal(t, 2, s.Lessons[0].AssertionsPassed)
	assert.Empty(t, s.Lessons[0].Failures)
	assert.Equal(t, []FailureDetail{
		{Description: "null for missing", Error: "boom"},
		{Description: "falsy"},
	}, s.Lessons[1].Failures)
}

func TestBuildMasterSummary_Empty(t *testing.T) {
	s := BuildMasterSummary(nil)
	assert.Equal(t, 0, s.TotalLessons)
	assert.Equal(t, 0.0, s.PassRate)
	assert.NotNil(t, s.Lessons)
}

func TestSummaryMarkdown(t *testing.T) {
	md := SummaryMarkdown(BuildMasterSummary(sampleResults()))

	assert.Contains(t, md, "# Lesson Verification Summary")
	assert.Contains(t, md, "| What is a CID? (lesson-1-1) | PASSED |")
	assert.Contains(t, md, "FVM \\| Intro")
	assert.Contains(t, md, "### lesson-3-1")
	assert.Contains(t, md, "- null for missing: `boom`")
	assert.Contains(t, md, "- falsy\n")
	assert.Contains(t, md, "| Pass Rate | 50% |")
}

func TestSaveMasterSummary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	s := BuildMasterSummary(sampleResults())

	jsonPath, mdPath, err := SaveMasterSummary(s, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded MasterSummary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s.ID, decoded.ID)
	assert.Equal(t, 2, decoded.TotalLessons)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), s.ID)

	latest, err := os.ReadFile(filepath.Join(dir, "latest_summary.json"))
	require.NoError(t, err)
	assert.Equal(t, data, latest)
}

func TestJSONReporter(t *testing.T) {
	results := sampleResults()

	compact := NewJSONReporter(false)
	data, err := compact.GenerateReport(results[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n")

	var decoded lesson.Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "lesson-1-1", decoded.LessonID)

	pretty := NewJSONReporter(true)
	var buf bytes.Buffer
	require.NoError(t, pretty.WriteReport(&buf, results[1]))
	assert.Contains(t, buf.String(), "\n  \"lesson_id\": \"lesson-3-1\"")

	summary, err := pretty.GenerateMasterSummary(results)
	require.NoError(t, err)
	var ms MasterSummary
	require.NoError(t, json.Unmarshal(summary, &ms))
	assert.Equal(t, 1, ms.PassedLessons)

	var _ Reporter = pretty
}

func TestAppendToHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	results := sampleResults()

	require.NoError(t, AppendToHistory(path, "sum-1", results...))
	require.NoError(t, AppendToHistory(path, "sum-2", results[0]))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []HistoricalEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e HistoricalEntry
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		entries = append(entries, e)
	}
	require.NoError(t, sc.Err())
	require.Len(t, entries, 3)
	assert.Equal(t, "lesson-3-1", entries[1].LessonID)
	assert.Equal(t, 1, entries[1].AssertionsPassed)
	assert.Equal(t, 3, entries[1].AssertionsTotal)
	assert.Equal(t, "sum-2", entries[2].SummaryID)
	assert.Equal(t, "30ms", entries[1].Duration)
}

func TestAppendToHistory_BadPath(t *testing.T) {
	err := AppendToHistory(filepath.Join(t.TempDir(), "missing", "h.jsonl"), "", sampleResults()...)
	assert.Error(t, err)
}
