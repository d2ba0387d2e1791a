package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.lessons/pkg/assertion"
	"digital.vasic.lessons/pkg/lesson"
	"digital.vasic.lessons/pkg/logging"
	"digital.vasic.lessons/pkg/sandbox"
)

const cidSolution = `function isValidCID(str) {
  return str.startsWith('Qm') && str.length === 46;
}`

func cidLesson() *lesson.Lesson {
	return &lesson.Lesson{
		ID:           "1-1",
		ModuleID:     "1",
		Title:        "What is IPFS?",
		SolutionCode: cidSolution,
		ValidationTests: []assertion.Definition{
			{
				Description: "Function returns true for valid CID",
				Test:        "isValidCID('QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG') === true",
			},
			{
				Description: "Function returns false for invalid CID",
				Test:        "isValidCID('not-a-cid') === false",
			},
		},
	}
}

// --- recording doubles ---

type recordingMetrics struct {
	mu          sync.Mutex
	runs        map[string]int
	assertions  map[string]int
	active      int
	maxActive   int
	completions int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		runs:       make(map[string]int),
		assertions: make(map[string]int),
	}
}

func (m *recordingMetrics) RecordRun(id, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[id+":"+status]++
}

func (m *recordingMetrics) RecordAssertion(id, kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assertions[id+":"+kind+":"+outcome]++
}

func (m *recordingMetrics) RecordCompletion(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions++
}

func (m *recordingMetrics) RunStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active++
	if m.active > m.maxActive {
		m.maxActive = m.active
	}
}

func (m *recordingMetrics) RunFinished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active--
}

type eventLogger struct {
	logging.NullLogger
	mu     sync.Mutex
	events []string
}

func (l *eventLogger) Info(msg string, _ ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, msg)
}

// --- RunSuite ---

func TestDefaultRunner_RunSuite_ReferenceSolutionPasses(t *testing.T) {
	r := NewRunner()
	l := cidLesson()

	results := r.RunSuite(context.Background(), l.SolutionCode, l.ValidationTests)

	require.Len(t, results, 2)
	for i, res := range results {
		assert.True(t, res.Passed, res.Error)
		assert.Equal(t, l.ValidationTests[i].Description, res.Description)
	}
}

func TestDefaultRunner_RunSuite_SyntaxErrorFullLength(t *testing.T) {
	r := NewRunner()
	l := cidLesson()

	results := r.RunSuite(context.Background(),
		"function isValidCID(str) {\n  return str.startsWith('Qm');\n",
		l.ValidationTests)

	require.Len(t, results, len(l.ValidationTests))
	for _, res := range results {
		assert.False(t, res.Passed)
		assert.Equal(t, sandbox.FailureSyntax, res.Failure)
		assert.NotEmpty(t, res.Error)
	}
}

func TestDefaultRunner_RunSuite_Isolation(t *testing.T) {
	r := NewRunner()
	defs := []assertion.Definition{
		{Description: "throws", Test: "explode()"},
		{Description: "passes", Test: "ok() === true"},
	}

	results := r.RunSuite(context.Background(),
		"function explode() { throw new Error('kaboom'); }\nfunction ok() { return true; }",
		defs)

	require.Len(t, results, 2)
	assert.False(t, results[0].Passed)
	assert.Equal(t, "kaboom", results[0].Error)
	assert.True(t, results[1].Passed)
}

func TestDefaultRunner_RunSuite_Empty(t *testing.T) {
	results := NewRunner().RunSuite(context.Background(), "var x;", nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestDefaultRunner_RunSuite_Idempotent(t *testing.T) {
	r := NewRunner()
	l := cidLesson()
	submission := "function isValidCID(s) { return s.length === 46; }"

	first := r.RunSuite(context.Background(), submission, l.ValidationTests)
	second := r.RunSuite(context.Background(), submission, l.ValidationTests)
	assert.Equal(t, first, second)
}

// --- RunLesson ---

func TestDefaultRunner_RunLesson_Passed(t *testing.T) {
	m := newRecordingMetrics()
	logger := &eventLogger{}
	r := NewRunner(WithMetrics(m), WithLogger(logger))

	res := r.RunLesson(context.Background(), cidLesson(), cidSolution)

	assert.Equal(t, lesson.StatusPassed, res.Status)
	assert.Equal(t, "1-1", res.LessonID)
	assert.Equal(t, "What is IPFS?", res.LessonTitle)
	assert.True(t, res.AllPassed())
	assert.False(t, res.EndTime.Before(res.StartTime))
	assert.Equal(t, 1, m.runs["1-1:passed"])
	assert.Equal(t, 2, m.assertions["1-1:expression:passed"])
	assert.Equal(t, 0, m.active)
	assert.Equal(t, []string{"run_started", "run_completed"}, logger.events)
}

func TestDefaultRunner_RunLesson_Failed(t *testing.T) {
	m := newRecordingMetrics()
	r := NewRunner(WithMetrics(m))

	res := r.RunLesson(context.Background(), cidLesson(),
		"function isValidCID(s) { return true; }")

	assert.Equal(t, lesson.StatusFailed, res.Status)
	assert.Equal(t, 1, res.PassedCount())
	assert.Equal(t, 1, m.assertions["1-1:expression:failed"])
}

func TestDefaultRunner_RunLesson_EmptySuiteUnderPolicies(t *testing.T) {
	empty := &lesson.Lesson{ID: "9-9", Title: "No checks"}

	strict := NewRunner().RunLesson(context.Background(), empty, "var x;")
	assert.Equal(t, lesson.StatusFailed, strict.Status)
	assert.NotNil(t, strict.Assertions)
	assert.Empty(t, strict.Assertions)

	vacuous := NewRunner(WithCompletionPolicy(lesson.VacuousPass)).
		RunLesson(context.Background(), empty, "var x;")
	assert.Equal(t, lesson.StatusPassed, vacuous.Status)
}

func TestDefaultRunner_RunLesson_PreHookError(t *testing.T) {
	r := NewRunner(WithPreHook(func(context.Context, *lesson.Lesson, *lesson.Result) error {
		return errors.New("rate limited")
	}))

	res := r.RunLesson(context.Background(), cidLesson(), cidSolution)

	assert.Equal(t, lesson.StatusError, res.Status)
	assert.Equal(t, "pre-hook failed: rate limited", res.Error)
	assert.Empty(t, res.Assertions)
}

func TestDefaultRunner_RunLesson_PostHooks(t *testing.T) {
	var seen []string
	logger := &eventLogger{}
	r := NewRunner(
		WithLogger(logger),
		WithPostHook(func(_ context.Context, l *lesson.Lesson, res *lesson.Result) error {
			seen = append(seen, l.ID+":"+res.Status)
			return nil
		}),
		WithPostHook(func(context.Context, *lesson.Lesson, *lesson.Result) error {
			return errors.New("listener gone")
		}),
	)

	res := r.RunLesson(context.Background(), cidLesson(), cidSolution)

	assert.Equal(t, lesson.StatusPassed, res.Status)
	assert.Equal(t, []string{"1-1:passed"}, seen)
	assert.Contains(t, logger.events, "post_hook_warning")
}

func TestDefaultRunner_RunLesson_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewRunner().RunLesson(ctx, cidLesson(), cidSolution)

	assert.Equal(t, lesson.StatusFailed, res.Status)
	require.Len(t, res.Assertions, 2)
	for _, a := range res.Assertions {
		assert.Equal(t, sandbox.FailureCanceled, a.Failure)
	}
}

func TestNewRunner_Defaults(t *testing.T) {
	r := NewRunner(WithLogger(nil), WithMetrics(nil))
	assert.NotNil(t, r.Engine())
	assert.Equal(t, lesson.RequireAssertions, r.Policy())
	assert.NotNil(t, r.logger)
	assert.NotNil(t, r.metrics)
}

// --- VerifySolutions ---

func TestDefaultRunner_VerifySolutions(t *testing.T) {
	good := cidLesson()
	bad := cidLesson()
	bad.ID = "1-2"
	bad.SolutionCode = "function isValidCID() { return false; }"
	third := cidLesson()
	third.ID = "1-3"

	m := newRecordingMetrics()
	r := NewRunner(WithMetrics(m))

	results, err := r.VerifySolutions(context.Background(),
		[]*lesson.Lesson{good, bad, third}, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "1-1", results[0].LessonID)
	assert.Equal(t, "1-2", results[1].LessonID)
	assert.Equal(t, "1-3", results[2].LessonID)

	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "1-2", failed[0].LessonID)
	assert.LessOrEqual(t, m.maxActive, 2)
}

func TestDefaultRunner_VerifySolutions_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewRunner().VerifySolutions(ctx,
		[]*lesson.Lesson{cidLesson(), cidLesson()}, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
