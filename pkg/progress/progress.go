// Package progress records which lessons a learner has completed,
// together with the last submission that completed them.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"digital.vasic.lessons/pkg/lesson"
	"digital.vasic.lessons/pkg/store"
)

// Record is one learner's progress on one lesson.
type Record struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	LessonID       string    `json:"lesson_id"`
	Completed      bool      `json:"completed"`
	CodeSubmission string    `json:"code_submission"`
	CompletedAt    time.Time `json:"completed_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// ModuleStats counts completed lessons of one module.
type ModuleStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Percent returns completion as a whole percentage.
func (s ModuleStats) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Completed * 100 / s.Total
}

// Tracker reads and writes progress records.
type Tracker struct {
	store store.Store
	now   func() time.Time
}

// NewTracker creates a Tracker over st.
func NewTracker(st store.Store) *Tracker {
	return &Tracker{store: st, now: time.Now}
}

// SetClock replaces the wall clock.
func (t *Tracker) SetClock(now func() time.Time) {
	if now != nil {
		t.now = now
	}
}

func userPrefix(userID string) string {
	return "progress/" + userID + "/"
}

func recordKey(userID, lessonID string) string {
	return userPrefix(userID) + lessonID
}

// MarkLessonComplete marks a lesson complete with the given code.
// An existing record keeps its ID and creation time. The returned
// flag is true when the lesson was not complete before.
func (t *Tracker) MarkLessonComplete(ctx context.Context, userID, lessonID, code string) (*Record, bool, error) {
	if userID == "" || lessonID == "" {
		return nil, false, errors.New("progress: user and lesson IDs are required")
	}

	now := t.now().UTC()
	var rec Record
	var newly bool
	err := t.store.Update(ctx, func(tx store.Tx) error {
		rec = Record{}
		err := store.TxGetJSON(tx, recordKey(userID, lessonID), &rec)
		switch {
		case errors.Is(err, store.ErrNotFound):
			rec = Record{
				ID:        uuid.NewString(),
				UserID:    userID,
				LessonID:  lessonID,
				CreatedAt: now,
			}
		case err != nil:
			return err
		}
		newly = !rec.Completed
		rec.Completed = true
		rec.CodeSubmission = code
		rec.CompletedAt = now
		return store.TxPutJSON(tx, recordKey(userID, lessonID), &rec)
	})
	if err != nil {
		return nil, false, fmt.Errorf("mark lesson complete: %w", err)
	}
	return &rec, newly, nil
}

// Records returns every record of a user, ordered by lesson ID.
func (t *Tracker) Records(ctx context.Context, userID string) ([]Record, error) {
	recs, err := store.ListJSON[Record](ctx, t.store, userPrefix(userID))
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return recs, nil
}

// Get returns the record of one lesson or store.ErrNotFound.
func (t *Tracker) Get(ctx context.Context, userID, lessonID string) (*Record, error) {
	var rec Record
	if err := store.GetJSON(ctx, t.store, recordKey(userID, lessonID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// IsLessonComplete reports whether the user completed the lesson.
func (t *Tracker) IsLessonComplete(ctx context.Context, userID, lessonID string) (bool, error) {
	rec, err := t.Get(ctx, userID, lessonID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rec.Completed, nil
}

// CompletedLessonIDs returns the set of completed lesson IDs.
func (t *Tracker) CompletedLessonIDs(ctx context.Context, userID string) (map[string]bool, error) {
	recs, err := t.Records(ctx, userID)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(recs))
	for _, r := range recs {
		if r.Completed {
			done[r.LessonID] = true
		}
	}
	return done, nil
}

// ModuleStats counts how many of lessons the user completed.
func (t *Tracker) ModuleStats(ctx context.Context, userID string, lessons []*lesson.Lesson) (ModuleStats, error) {
	stats := ModuleStats{Total: len(lessons)}
	if userID == "" {
		return stats, nil
	}
	done, err := t.CompletedLessonIDs(ctx, userID)
	if err != nil {
		return ModuleStats{}, err
	}
	for _, l := range lessons {
		if done[l.ID] {
			stats.Completed++
		}
	}
	return stats, nil
}
