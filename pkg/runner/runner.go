// Package runner runs exercise assertion suites. A suite run
// evaluates every assertion of a lesson in order, never stops
// early and never returns an error: failures are part of the
// result.
package runner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"digital.vasic.lessons/pkg/assertion"
	"digital.vasic.lessons/pkg/lesson"
	"digital.vasic.lessons/pkg/logging"
	"digital.vasic.lessons/pkg/metrics"
)

// Runner defines the interface for suite execution.
type Runner interface {
	// RunSuite evaluates every assertion against the submission
	// and returns one result per assertion, in order.
	RunSuite(
		ctx context.Context,
		submission string,
		defs []assertion.Definition,
	) []assertion.Result

	// RunLesson runs a lesson's assertions against the
	// submission and wraps the results with status and timing.
	RunLesson(
		ctx context.Context,
		l *lesson.Lesson,
		submission string,
	) *lesson.Result

	// VerifySolutions runs every lesson's reference solution
	// concurrently with at most maxConcurrency runs in flight.
	VerifySolutions(
		ctx context.Context,
		lessons []*lesson.Lesson,
		maxConcurrency int,
	) ([]*lesson.Result, error)
}

// Hook is a function invoked before or after a lesson run. Pre
// hooks receive the result in running state; a failing pre hook
// aborts the run with StatusError.
type Hook func(
	ctx context.Context,
	l *lesson.Lesson,
	result *lesson.Result,
) error

// DefaultRunner is the standard Runner implementation.
type DefaultRunner struct {
	engine    assertion.Engine
	logger    logging.Logger
	metrics   metrics.Recorder
	policy    lesson.CompletionPolicy
	preHooks  []Hook
	postHooks []Hook
}

// NewRunner creates a DefaultRunner with the supplied options.
func NewRunner(opts ...RunnerOption) *DefaultRunner {
	r := &DefaultRunner{
		logger:  logging.NullLogger{},
		metrics: metrics.NoopMetrics{},
		policy:  lesson.RequireAssertions,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.engine == nil {
		r.engine = assertion.NewEngine(nil)
	}
	return r
}

// Engine returns the assertion engine.
func (r *DefaultRunner) Engine() assertion.Engine {
	return r.engine
}

// Policy returns the completion policy used for run status.
func (r *DefaultRunner) Policy() lesson.CompletionPolicy {
	return r.policy
}

// RunSuite compiles the submission once and evaluates every
// assertion against it. Zero assertions yield an empty, non-nil
// slice.
func (r *DefaultRunner) RunSuite(
	ctx context.Context,
	submission string,
	defs []assertion.Definition,
) []assertion.Result {
	sub := r.engine.Compile(submission)
	return r.engine.EvaluateAll(ctx, sub, defs)
}

// RunLesson runs a lesson: pre-hooks -> suite -> status under
// the completion policy -> post-hooks.
func (r *DefaultRunner) RunLesson(
	ctx context.Context,
	l *lesson.Lesson,
	submission string,
) *lesson.Result {
	result := &lesson.Result{
		LessonID:    l.ID,
		LessonTitle: l.Title,
		Status:      lesson.StatusRunning,
		StartTime:   time.Now(),
		Assertions:  []assertion.Result{},
	}

	r.metrics.RunStarted()
	defer r.metrics.RunFinished()

	r.logEvent("run_started", map[string]any{
		"lesson_id":  l.ID,
		"assertions": len(l.ValidationTests),
	})

	for _, hook := range r.preHooks {
		if err := hook(ctx, l, result); err != nil {
			result.Status = lesson.StatusError
			result.Error = fmt.Sprintf("pre-hook failed: %v", err)
			r.finish(result)
			r.logEvent("run_error", map[string]any{
				"lesson_id": l.ID,
				"error":     result.Error,
			})
			return result
		}
	}

	result.Assertions = r.RunSuite(ctx, submission, l.ValidationTests)

	for _, a := range result.Assertions {
		r.metrics.RecordAssertion(
			l.ID, a.Kind, metrics.Outcome(a.Passed, a.Error),
		)
	}

	result.Status = lesson.StatusFailed
	if r.policy.Completes(result.Assertions) {
		result.Status = lesson.StatusPassed
	}
	r.finish(result)

	for _, hook := range r.postHooks {
		if err := hook(ctx, l, result); err != nil {
			r.logEvent("post_hook_warning", map[string]any{
				"lesson_id": l.ID,
				"warning":   err.Error(),
			})
		}
	}

	r.logEvent("run_completed", map[string]any{
		"lesson_id":   l.ID,
		"status":      result.Status,
		"passed":      result.PassedCount(),
		"total":       len(result.Assertions),
		"duration_ms": result.Duration.Milliseconds(),
	})

	return result
}

func (r *DefaultRunner) finish(result *lesson.Result) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	r.metrics.RecordRun(result.LessonID, result.Status, result.Duration)
}

// logEvent emits a structured log entry with fields in a stable
// order.
func (r *DefaultRunner) logEvent(event string, data map[string]any) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]logging.Field, 0, len(data)+1)
	fields = append(fields, logging.StringField("event", event))
	for _, k := range keys {
		fields = append(fields, logging.LogField(k, data[k]))
	}
	r.logger.Info(event, fields...)
}
