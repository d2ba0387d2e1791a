// Package session runs a learner's submission for a lesson, turns
// the results into feedback and records completion.
package session

import (
	"context"
	"errors"

	"digital.vasic.lessons/pkg/apperr"
	"digital.vasic.lessons/pkg/assertion"
	"digital.vasic.lessons/pkg/lesson"
	"digital.vasic.lessons/pkg/logging"
	"digital.vasic.lessons/pkg/metrics"
	"digital.vasic.lessons/pkg/progress"
	"digital.vasic.lessons/pkg/runner"
)

// LessonSource looks lessons up by ID.
type LessonSource interface {
	Lesson(id string) (*lesson.Lesson, bool)
}

// ProgressStore records lesson completion.
type ProgressStore interface {
	IsLessonComplete(ctx context.Context, userID, lessonID string) (bool, error)
	MarkLessonComplete(ctx context.Context, userID, lessonID, code string) (*progress.Record, bool, error)
}

// Feedback is what a learner sees after submitting code.
type Feedback struct {
	LessonID string             `json:"lesson_id"`
	Status   string             `json:"status"`
	Results  []assertion.Result `json:"results"`

	// AllPassed reports whether the run's status is passed.
	AllPassed bool `json:"all_passed"`

	// Completed reports whether the lesson is complete for the user
	// after this submission. Always false for anonymous submissions.
	Completed bool `json:"completed"`

	// NewlyCompleted is true when this submission completed the lesson.
	NewlyCompleted bool `json:"newly_completed"`

	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Service is the exercise session.
type Service struct {
	lessons  LessonSource
	runner   runner.Runner
	progress ProgressStore
	policy   lesson.CompletionPolicy
	metrics  metrics.Recorder
	logger   logging.Logger

	onComplete func(lessonID string)
}

// Option configures a Service.
type Option func(*Service)

// WithCompletionPolicy sets the policy that decides completion.
func WithCompletionPolicy(p lesson.CompletionPolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithOnComplete registers fn to be called once per newly recorded
// completion.
func WithOnComplete(fn func(lessonID string)) Option {
	return func(s *Service) {
		s.onComplete = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service. A nil runner is replaced by a default
// runner sharing the session's completion policy and metrics. An
// injected runner that reports its policy overrides
// WithCompletionPolicy, since its run status is the verdict.
func New(lessons LessonSource, r runner.Runner, ps ProgressStore, opts ...Option) *Service {
	s := &Service{
		lessons:  lessons,
		runner:   r,
		progress: ps,
		policy:   lesson.RequireAssertions,
		metrics:  metrics.NoopMetrics{},
		logger:   logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = runner.NewRunner(
			runner.WithCompletionPolicy(s.policy),
			runner.WithMetrics(s.metrics),
			runner.WithLogger(s.logger),
		)
	} else if pr, ok := s.runner.(interface {
		Policy() lesson.CompletionPolicy
	}); ok && pr.Policy() != s.policy {
		s.logger.Warn("completion_policy_overridden",
			logging.StringField("session", s.policy.String()),
			logging.StringField("runner", pr.Policy().String()),
		)
		s.policy = pr.Policy()
	}
	return s
}

// Policy returns the completion policy.
func (s *Service) Policy() lesson.CompletionPolicy {
	return s.policy
}

func (s *Service) lookup(lessonID string) (*lesson.Lesson, error) {
	l, ok := s.lessons.Lesson(lessonID)
	if !ok {
		return nil, apperr.NotFound("lesson not found")
	}
	return l, nil
}

// Submit runs code against the lesson's assertions. When the
// verdict passes and the user had not completed the lesson yet, the
// completion is recorded with the submitted code. Anonymous
// submissions (empty userID) are evaluated but never recorded.
func (s *Service) Submit(ctx context.Context, userID, lessonID, code string) (*Feedback, error) {
	l, err := s.lookup(lessonID)
	if err != nil {
		return nil, err
	}

	res := s.runner.RunLesson(ctx, l, code)
	fb := &Feedback{
		LessonID:   l.ID,
		Status:     res.Status,
		Results:    res.Assertions,
		AllPassed:  res.Status == lesson.StatusPassed,
		DurationMS: res.Duration.Milliseconds(),
		Error:      res.Error,
	}
	if fb.Results == nil {
		fb.Results = []assertion.Result{}
	}

	if userID == "" || s.progress == nil {
		return fb, nil
	}

	done, err := s.progress.IsLessonComplete(ctx, userID, l.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	fb.Completed = done
	if !fb.AllPassed || done {
		return fb, nil
	}

	_, newly, err := s.record(ctx, userID, l.ID, code)
	if err != nil {
		return nil, err
	}
	fb.NewlyCompleted = newly
	fb.Completed = true
	return fb, nil
}

// MarkComplete completes a lesson without running its assertions.
func (s *Service) MarkComplete(ctx context.Context, userID, lessonID, code string) (*progress.Record, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("sign in to save progress")
	}
	if s.progress == nil {
		return nil, apperr.Internal(errors.New("session: no progress store"))
	}
	l, err := s.lookup(lessonID)
	if err != nil {
		return nil, err
	}
	rec, _, err := s.record(ctx, userID, l.ID, code)
	return rec, err
}

func (s *Service) record(ctx context.Context, userID, lessonID, code string) (*progress.Record, bool, error) {
	rec, newly, err := s.progress.MarkLessonComplete(ctx, userID, lessonID, code)
	if err != nil {
		return nil, false, apperr.Internal(err)
	}
	if newly {
		s.metrics.RecordCompletion(lessonID)
		if s.onComplete != nil {
			s.onComplete(lessonID)
		}
		s.logger.Info("lesson_completed",
			logging.StringField("user_id", userID),
			logging.StringField("lesson_id", lessonID),
		)
	}
	return rec, newly, nil
}
