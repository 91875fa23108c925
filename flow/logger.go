package flow

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with utility-specific context so every run
// logs the same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. A nil handler
// logs text to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that writes human-readable text to
// stderr at the given level.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// WithUtility tags the logger with the utility name.
func (l *Logger) WithUtility(name string) *Logger {
	return &Logger{Logger: l.Logger.With("utility", name)}
}

// WithSpool tags the logger with the spool being processed.
func (l *Logger) WithSpool(name string) *Logger {
	return &Logger{Logger: l.Logger.With("spool", name)}
}

// LogPass logs the outcome of one streaming pass over a spool.
func (l *Logger) LogPass(ctx context.Context, pass string, traces int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "pass failed",
			"pass", pass,
			"traces", traces,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "pass completed",
			"pass", pass,
			"traces", traces,
		)
	}
}
