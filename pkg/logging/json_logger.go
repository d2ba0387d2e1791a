package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// LoggerConfig configures the JSONLogger.
type LoggerConfig struct {
	// OutputPath is the log file. Empty means stdout.
	OutputPath string
	Level      LogLevel
	// Verbose enables Debug output regardless of Level.
	Verbose bool
	Fields  map[string]any
	// Writer overrides OutputPath when set. Used by tests.
	Writer io.Writer
}

// JSONLogger implements Logger with JSON Lines output produced
// by a slog.JSONHandler.
type JSONLogger struct {
	logger  *slog.Logger
	closer  io.Closer
	verbose bool

	mu     *sync.Mutex
	closed *bool
}

// NewJSONLogger creates a new JSON logger. If OutputPath is
// empty and no Writer is given, logs are written to stdout.
func NewJSONLogger(config LoggerConfig) (*JSONLogger, error) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer
	)

	switch {
	case config.Writer != nil:
		out = config.Writer
	case config.OutputPath != "":
		dir := filepath.Dir(config.OutputPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf(
				"failed to create log directory: %w", err,
			)
		}
		file, err := os.OpenFile(
			config.OutputPath,
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0644,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to open log file: %w", err,
			)
		}
		out = file
		closer = file
	}

	level := config.Level
	if config.Verbose {
		level = LevelDebug
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level.slogLevel(),
	})

	logger := slog.New(handler)
	if len(config.Fields) > 0 {
		args := make([]any, 0, len(config.Fields)*2)
		for k, v := range config.Fields {
			args = append(args, k, v)
		}
		logger = logger.With(args...)
	}

	closed := false
	return &JSONLogger{
		logger:  logger,
		closer:  closer,
		verbose: config.Verbose,
		mu:      &sync.Mutex{},
		closed:  &closed,
	}, nil
}

// NewSlogLogger adapts an existing slog.Logger. Close is a
// no-op for adapted loggers.
func NewSlogLogger(l *slog.Logger) *JSONLogger {
	closed := false
	return &JSONLogger{
		logger: l,
		mu:     &sync.Mutex{},
		closed: &closed,
	}
}

// Slog exposes the underlying slog.Logger so that libraries
// expecting one (HTTP access logs, storage) share the sink.
func (l *JSONLogger) Slog() *slog.Logger {
	return l.logger
}

func (l *JSONLogger) log(
	level slog.Level, msg string, fields []Field,
) {
	l.mu.Lock()
	closed := *l.closed
	l.mu.Unlock()
	if closed {
		return
	}

	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// Info logs an informational message.
func (l *JSONLogger) Info(msg string, fields ...Field) {
	l.log(slog.LevelInfo, msg, fields)
}

// Warn logs a warning message.
func (l *JSONLogger) Warn(msg string, fields ...Field) {
	l.log(slog.LevelWarn, msg, fields)
}

// Error logs an error message.
func (l *JSONLogger) Error(msg string, fields ...Field) {
	l.log(slog.LevelError, msg, fields)
}

// Debug logs a debug message.
func (l *JSONLogger) Debug(msg string, fields ...Field) {
	l.log(slog.LevelDebug, msg, fields)
}

// WithFields returns a new Logger with additional default
// fields. The returned logger shares the output and its
// closed state with the parent.
func (l *JSONLogger) WithFields(fields ...Field) Logger {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return &JSONLogger{
		logger:  l.logger.With(args...),
		verbose: l.verbose,
		mu:      l.mu,
		closed:  l.closed,
	}
}

// Close closes the output file, if any. Further log calls are
// dropped.
func (l *JSONLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if *l.closed {
		return nil
	}
	*l.closed = true

	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
