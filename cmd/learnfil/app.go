package main

import (
	"fmt"
	"io"

	"digital.vasic.lessons/pkg/assertion"
	"digital.vasic.lessons/pkg/bank"
	"digital.vasic.lessons/pkg/config"
	"digital.vasic.lessons/pkg/env"
	"digital.vasic.lessons/pkg/lesson"
	"digital.vasic.lessons/pkg/logging"
	"digital.vasic.lessons/pkg/metrics"
	"digital.vasic.lessons/pkg/runner"
	"digital.vasic.lessons/pkg/sandbox"
)

// app holds what every command shares.
type app struct {
	cfg    *config.Config
	logger logging.Logger
	bank   *bank.Bank
}

func loadApp(logOut io.Writer) (*app, error) {
	loader := env.NewLoader()
	if err := loader.LoadOptional(envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg, err := config.Load(configPath, loader)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if contentDir != "" {
		cfg.Content.Dir = contentDir
	}

	base, err := logging.NewJSONLogger(logging.LoggerConfig{
		OutputPath: cfg.Logging.Output,
		Level:      logging.ParseLevel(cfg.Logging.Level),
		Fields:     map[string]any{"service": "learnfil"},
		Writer:     logOut,
	})
	if err != nil {
		return nil, err
	}
	logger := logging.NewRedactingLogger(base, cfg.Auth.JWTKey)

	b, err := loadBank(cfg, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, bank: b}, nil
}

func loadBank(cfg *config.Config, logger logging.Logger) (*bank.Bank, error) {
	b := bank.New()
	if cfg.Content.Seed {
		if err := b.LoadSeed(); err != nil {
			return nil, err
		}
	}
	if cfg.Content.Dir != "" {
		if err := b.LoadDir(cfg.Content.Dir); err != nil {
			return nil, err
		}
	}
	logger.Info("lesson bank loaded",
		logging.IntField("lessons", b.Count()),
		logging.LogField("sources", b.Sources()),
	)
	return b, nil
}

func (a *app) policy() lesson.CompletionPolicy {
	return lesson.PolicyFor(a.cfg.Completion.AllowEmpty)
}

func (a *app) newRunner(m metrics.Recorder, opts ...runner.RunnerOption) *runner.DefaultRunner {
	sb := sandbox.New(
		sandbox.WithTimeout(a.cfg.Sandbox.Timeout.Duration),
		sandbox.WithMaxCallStack(a.cfg.Sandbox.MaxCallStack),
		sandbox.WithMaxConsoleBytes(a.cfg.Sandbox.MaxConsoleBytes),
		sandbox.WithLogger(a.logger),
	)
	base := []runner.RunnerOption{
		runner.WithEngine(assertion.NewEngine(sb)),
		runner.WithLogger(a.logger),
		runner.WithMetrics(m),
		runner.WithCompletionPolicy(a.policy()),
	}
	return runner.NewRunner(append(base, opts...)...)
}
