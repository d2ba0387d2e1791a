// Package httpapi exposes the course, the exercise session and the
// learner's progress over HTTP.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"

	"digital.vasic.lessons/pkg/auth"
	"digital.vasic.lessons/pkg/lesson"
	"digital.vasic.lessons/pkg/logging"
	"digital.vasic.lessons/pkg/progress"
	"digital.vasic.lessons/pkg/session"
)

// ServiceName tags request log entries.
const ServiceName = "learnfil"

// Catalog is the read side of the lesson bank.
type Catalog interface {
	Modules() []*lesson.Module
	Module(id string) (*lesson.Module, bool)
	Lessons(moduleID string) []*lesson.Lesson
	Lesson(id string) (*lesson.Lesson, bool)
}

// Deps are the collaborators the server routes to. Metrics and
// Events are optional.
type Deps struct {
	Auth     *auth.Service
	Catalog  Catalog
	Sessions *session.Service
	Progress *progress.Tracker
	Metrics  http.Handler
	Events   http.Handler
	Logger   logging.Logger
}

// Options tune the transport.
type Options struct {
	AllowedOrigins []string

	// AccessLog receives request logs. Defaults to stdout.
	AccessLog io.Writer
	Debug     bool
}

// Server is the HTTP front of the course.
type Server struct {
	deps     Deps
	auth     *auth.Service
	logger   logging.Logger
	validate *validator.Validate
	router   *chi.Mux
}

// NewServer builds the router and registers every route.
func NewServer(deps Deps, opts Options) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NullLogger{}
	}

	s := &Server{
		deps:     deps,
		auth:     deps.Auth,
		logger:   logger,
		validate: validator.New(),
		router:   chi.NewRouter(),
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	accessLog := httplog.NewLogger(ServiceName, httplog.Options{
		JSON:             true,
		LogLevel:         level,
		Concise:          true,
		MessageFieldName: "message",
		QuietDownRoutes:  []string{"/health", "/metrics"},
		QuietDownPeriod:  time.Minute,
		Writer:           opts.AccessLog,
	})
	s.router.Use(httplog.RequestLogger(accessLog, []string{"/health"}))

	// Credentials are allowed only for an explicit origin list.
	origins := opts.AllowedOrigins
	credentials := len(origins) > 0 && !slices.Contains(origins, "*")
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: credentials,
		MaxAge:           300,
	})
	s.router.Use(corsMiddleware.Handler)

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics)
	}
	if s.deps.Events != nil {
		r.Method(http.MethodGet, "/events", s.deps.Events)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.signUp)
			r.Post("/signin", s.signIn)
			r.Post("/wallet", s.connectWallet)
			r.Post("/signout", requireUser(s.signOut))
			r.Get("/whoami", requireUser(s.whoAmI))
		})

		r.Get("/modules", s.listModules)
		r.Get("/modules/{moduleID}/lessons", s.listModuleLessons)
		r.Get("/lessons/{lessonID}", s.getLesson)
		r.Post("/lessons/{lessonID}/run", s.runLesson)
		r.Post("/lessons/{lessonID}/complete", requireUser(s.completeLesson))
		r.Get("/progress", requireUser(s.listProgress))
	})
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", logging.StringField("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
