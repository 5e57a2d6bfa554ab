package bitdex

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with bitdex-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithKey adds a key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// LogRegister logs a registration call.
func (l *Logger) LogRegister(ctx context.Context, path string, added int, err error) {
	if err != nil {
		l.DebugContext(ctx, "registration rejected",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "registration completed",
			"path", path,
			"added", added,
		)
	}
}

// LogBuild logs a Build call.
func (l *Logger) LogBuild(ctx context.Context, keys, records, workers int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"keys", keys,
			"records", records,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "build completed",
			"keys", keys,
			"records", records,
			"workers", workers,
			"duration", d,
		)
	}
}
