package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"digital.vasic.lessons/pkg/apperr"
	"digital.vasic.lessons/pkg/lesson"
	"digital.vasic.lessons/pkg/progress"
)

type moduleView struct {
	*lesson.Module
	LessonCount int                  `json:"lesson_count"`
	Progress    progress.ModuleStats `json:"progress"`
	Percent     int                  `json:"percent"`
}

type lessonView struct {
	lesson.Lesson
	Completed bool `json:"completed"`
}

type runRequest struct {
	Code string `json:"code"`
}

func (s *Server) listModules(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	modules := s.deps.Catalog.Modules()

	out := make([]moduleView, 0, len(modules))
	for _, m := range modules {
		lessons := s.deps.Catalog.Lessons(m.ID)
		stats := progress.ModuleStats{Total: len(lessons)}
		if s.deps.Progress != nil {
			var err error
			stats, err = s.deps.Progress.ModuleStats(r.Context(), userID, lessons)
			if err != nil {
				s.handleError(w, r, apperr.Internal(err))
				return
			}
		}
		out = append(out, moduleView{
			Module:      m,
			LessonCount: len(lessons),
			Progress:    stats,
			Percent:     stats.Percent(),
		})
	}
	writeSuccessJSON(w, out)
}

func (s *Server) listModuleLessons(w http.ResponseWriter, r *http.Request) {
	moduleID := chi.URLParam(r, "moduleID")
	if _, ok := s.deps.Catalog.Module(moduleID); !ok {
		s.handleError(w, r, apperr.NotFound("module not found: "+moduleID))
		return
	}

	completed := map[string]bool{}
	if userID := userIDFromContext(r.Context()); userID != "" && s.deps.Progress != nil {
		var err error
		completed, err = s.deps.Progress.CompletedLessonIDs(r.Context(), userID)
		if err != nil {
			s.handleError(w, r, apperr.Internal(err))
			return
		}
	}

	lessons := s.deps.Catalog.Lessons(moduleID)
	out := make([]lessonView, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, lessonView{Lesson: l.Public(), Completed: completed[l.ID]})
	}
	writeSuccessJSON(w, out)
}

func (s *Server) getLesson(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "lessonID")
	l, ok := s.deps.Catalog.Lesson(lessonID)
	if !ok {
		s.handleError(w, r, apperr.NotFound("lesson not found: "+lessonID))
		return
	}
	writeSuccessJSON(w, l.Public())
}

func (s *Server) runLesson(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	fb, err := s.deps.Sessions.Submit(r.Context(), userIDFromContext(r.Context()),
		chi.URLParam(r, "lessonID"), req.Code)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeSuccessJSON(w, fb)
}

func (s *Server) completeLesson(w http.ResponseWriter, r *http.Request) {
	// The submission is optional when completing manually.
	var req runRequest
	if r.ContentLength != 0 {
		if err := s.decodeBody(w, r, &req); err != nil {
			s.handleError(w, r, err)
			return
		}
	}
	rec, err := s.deps.Sessions.MarkComplete(r.Context(), userIDFromContext(r.Context()),
		chi.URLParam(r, "lessonID"), req.Code)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeSuccessJSON(w, rec)
}

func (s *Server) listProgress(w http.ResponseWriter, r *http.Request) {
	if s.deps.Progress == nil {
		writeSuccessJSON(w, []progress.Record{})
		return
	}
	recs, err := s.deps.Progress.Records(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.handleError(w, r, apperr.Internal(err))
		return
	}
	if recs == nil {
		recs = []progress.Record{}
	}
	writeSuccessJSON(w, recs)
}
