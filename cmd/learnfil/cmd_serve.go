package main

import (
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"digital.vasic.lessons/pkg/auth"
	"digital.vasic.lessons/pkg/httpapi"
	"digital.vasic.lessons/pkg/logging"
	"digital.vasic.lessons/pkg/metrics"
	"digital.vasic.lessons/pkg/monitor"
	"digital.vasic.lessons/pkg/progress"
	"digital.vasic.lessons/pkg/runner"
	"digital.vasic.lessons/pkg/session"
	"digital.vasic.lessons/pkg/store"
)

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(nil)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Close() }()

	if err := a.cfg.ValidateServe(); err != nil {
		return err
	}

	st, err := openStore(a)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	authSvc, err := auth.NewService(st, []byte(a.cfg.Auth.JWTKey),
		auth.WithTokenTTL(a.cfg.Auth.TokenTTL.Duration),
		auth.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	m := metrics.NewPrometheusMetrics()
	collector := monitor.NewEventCollector(monitor.DefaultHistory)
	hub := monitor.NewHub(collector, a.logger, originChecker(a.cfg.Server.AllowedOrigins))
	defer hub.Close()

	pre, post := collector.Hooks()
	r := a.newRunner(m, runner.WithPreHook(pre), runner.WithPostHook(post))

	tracker := progress.NewTracker(st)
	sessions := session.New(a.bank, r, tracker,
		session.WithCompletionPolicy(a.policy()),
		session.WithMetrics(m),
		session.WithLogger(a.logger),
		session.WithOnComplete(collector.EmitCompleted),
	)

	srv := httpapi.NewServer(httpapi.Deps{
		Auth:     authSvc,
		Catalog:  a.bank,
		Sessions: sessions,
		Progress: tracker,
		Metrics:  m.Handler(),
		Events:   hub,
		Logger:   a.logger,
	}, httpapi.Options{
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Debug:          logging.ParseLevel(a.cfg.Logging.Level) == logging.LevelDebug,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("serving",
		logging.StringField("addr", a.cfg.Server.Addr),
		logging.StringField("policy", a.policy().String()),
		logging.BoolField("persistent", a.cfg.Storage.DataDir != ""),
	)
	return srv.ListenAndServe(ctx, a.cfg.Server.Addr)
}

func openStore(a *app) (*store.BadgerStore, error) {
	if a.cfg.Storage.DataDir == "" {
		a.logger.Warn("storage.data_dir not set, progress is kept in memory")
		cfg := store.InMemoryConfig()
		cfg.Logger = a.logger
		return store.Open(cfg)
	}
	cfg := store.DefaultConfig(a.cfg.Storage.DataDir)
	cfg.Logger = a.logger
	return store.Open(cfg)
}

// originChecker allows WebSocket upgrades from the configured
// origins. "*" allows any origin.
func originChecker(origins []string) func(r *http.Request) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}
