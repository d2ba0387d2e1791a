package monitor

import (
	"sync"
	"time"
)

// Dashboard tracks per-lesson run statistics from events.
type Dashboard struct {
	mu        sync.RWMutex
	startTime time.Time
	lessons   map[string]LessonState
}

// LessonState summarises the runs of one lesson.
type LessonState struct {
	LessonID    string     `json:"lesson_id"`
	Title       string     `json:"title,omitempty"`
	Running     int        `json:"running"`
	Passed      int        `json:"passed"`
	Failed      int        `json:"failed"`
	Errored     int        `json:"errored"`
	Completions int        `json:"completions"`
	LastStatus  string     `json:"last_status,omitempty"`
	LastMessage string     `json:"last_message,omitempty"`
	LastRun     *time.Time `json:"last_run,omitempty"`
}

// DashboardSummary holds aggregate stats for the dashboard.
type DashboardSummary struct {
	Lessons  int     `json:"lessons"`
	Runs     int     `json:"runs"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Errored  int     `json:"errored"`
	Running  int     `json:"running"`
	PassRate float64 `json:"pass_rate"`
	Elapsed  string  `json:"elapsed"`
}

// DashboardSnapshot is a point-in-time copy of the dashboard.
type DashboardSnapshot struct {
	StartTime time.Time              `json:"start_time"`
	Lessons   map[string]LessonState `json:"lessons"`
	Summary   DashboardSummary       `json:"summary"`
}

// NewDashboard creates an empty dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{
		startTime: time.Now(),
		lessons:   make(map[string]LessonState),
	}
}

// UpdateFromEvent folds an event into the lesson state.
func (d *Dashboard) UpdateFromEvent(event RunEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, exists := d.lessons[event.LessonID]
	if !exists {
		state = LessonState{LessonID: event.LessonID}
	}
	if event.Title != "" {
		state.Title = event.Title
	}

	ts := event.Timestamp
	switch event.Type {
	case EventStarted:
		state.Running++
		state.LastRun = &ts
	case EventPassed, EventFailed, EventErrored:
		if state.Running > 0 {
			state.Running--
		}
		switch event.Type {
		case EventPassed:
			state.Passed++
		case EventFailed:
			state.Failed++
		default:
			state.Errored++
		}
		state.LastStatus = event.Status
		state.LastMessage = event.Message
	case EventCompleted:
		state.Completions++
	}
	d.lessons[event.LessonID] = state
}

// Snapshot returns a copy of the current state with a fresh summary.
func (d *Dashboard) Snapshot() DashboardSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := DashboardSnapshot{
		StartTime: d.startTime,
		Lessons:   make(map[string]LessonState, len(d.lessons)),
	}
	s := DashboardSummary{Lessons: len(d.lessons)}
	for k, v := range d.lessons {
		snap.Lessons[k] = v
		s.Passed += v.Passed
		s.Failed += v.Failed
		s.Errored += v.Errored
		s.Running += v.Running
	}
	s.Runs = s.Passed + s.Failed + s.Errored
	if s.Runs > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Runs) * 100
	}
	s.Elapsed = time.Since(d.startTime).Round(time.Millisecond).String()
	snap.Summary = s
	return snap
}

// BuildDashboard replays the collector's retained events into a
// new dashboard.
func BuildDashboard(collector *EventCollector) *Dashboard {
	d := NewDashboard()
	for _, event := range collector.Events() {
		d.UpdateFromEvent(event)
	}
	return d
}
