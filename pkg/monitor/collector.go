package monitor

import (
	"context"
	"sync"
	"time"

	"digital.vasic.lessons/pkg/lesson"
	"digital.vasic.lessons/pkg/runner"
)

// DefaultHistory is how many events a collector keeps by default.
const DefaultHistory = 256

// EventCollector captures run events and timing data. Only the most
// recent events are kept.
type EventCollector struct {
	mu       sync.RWMutex
	events   []RunEvent
	limit    int
	handlers []func(RunEvent)
	stats    CollectorStats
}

// CollectorStats holds aggregate statistics.
type CollectorStats struct {
	Runs        int           `json:"runs"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Errored     int           `json:"errored"`
	Completions int           `json:"completions"`
	StartTime   time.Time     `json:"start_time"`
	Uptime      time.Duration `json:"uptime"`
}

// NewEventCollector creates a collector keeping up to limit events.
// A non-positive limit uses DefaultHistory.
func NewEventCollector(limit int) *EventCollector {
	if limit <= 0 {
		limit = DefaultHistory
	}
	return &EventCollector{
		events: make([]RunEvent, 0, limit),
		limit:  limit,
		stats:  CollectorStats{StartTime: time.Now()},
	}
}

// OnEvent registers a handler to be called for each event.
func (c *EventCollector) OnEvent(handler func(RunEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and notifies all handlers.
func (c *EventCollector) Emit(event RunEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	if len(c.events) == c.limit {
		copy(c.events, c.events[1:])
		c.events = c.events[:len(c.events)-1]
	}
	c.events = append(c.events, event)
	switch event.Type {
	case EventStarted:
		c.stats.Runs++
	case EventPassed:
		c.stats.Passed++
	case EventFailed:
		c.stats.Failed++
	case EventErrored:
		c.stats.Errored++
	case EventCompleted:
		c.stats.Completions++
	}
	handlers := make([]func(RunEvent), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// EmitStarted emits a run started event.
func (c *EventCollector) EmitStarted(l *lesson.Lesson) {
	c.Emit(RunEvent{
		Type:     EventStarted,
		LessonID: l.ID,
		Title:    l.Title,
		Total:    len(l.ValidationTests),
	})
}

// EmitFinished emits the terminal event of a run.
func (c *EventCollector) EmitFinished(res *lesson.Result) {
	ev := RunEvent{
		LessonID: res.LessonID,
		Title:    res.LessonTitle,
		Status:   res.Status,
		Message:  res.Error,
		Passed:   res.PassedCount(),
		Total:    len(res.Assertions),
		Duration: res.Duration,
	}
	switch res.Status {
	case lesson.StatusPassed:
		ev.Type = EventPassed
	case lesson.StatusError:
		ev.Type = EventErrored
	default:
		ev.Type = EventFailed
	}
	c.Emit(ev)
}

// EmitCompleted emits a lesson completion event. User identity is
// not part of the event.
func (c *EventCollector) EmitCompleted(lessonID string) {
	c.Emit(RunEvent{
		Type:     EventCompleted,
		LessonID: lessonID,
		Status:   string(lesson.StatusPassed),
	})
}

// Hooks returns runner hooks that report every run to the collector.
func (c *EventCollector) Hooks() (pre, post runner.Hook) {
	pre = func(_ context.Context, l *lesson.Lesson, _ *lesson.Result) error {
		c.EmitStarted(l)
		return nil
	}
	post = func(_ context.Context, _ *lesson.Lesson, res *lesson.Result) error {
		c.EmitFinished(res)
		return nil
	}
	return pre, post
}

// Events returns a copy of the retained events, oldest first.
func (c *EventCollector) Events() []RunEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]RunEvent, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Uptime = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = CollectorStats{StartTime: time.Now()}
}
