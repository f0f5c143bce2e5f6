package fskit

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with fskit-specific context.
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

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// WithBackend adds a backend name field to the logger.
func (l *Logger) WithBackend(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("backend", name),
	}
}

// LogRead logs a read operation.
func (l *Logger) LogRead(ctx context.Context, path string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "read failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "read completed",
			"path", path,
			"bytes", size,
		)
	}
}

// LogWrite logs a write operation.
func (l *Logger) LogWrite(ctx context.Context, path string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write failed",
			"path", path,
			"bytes", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "write completed",
			"path", path,
			"bytes", size,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"path", path,
		)
	}
}

// LogList logs a directory listing operation.
func (l *Logger) LogList(ctx context.Context, dir string, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "list failed",
			"dir", dir,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "list completed",
			"dir", dir,
			"entries", entries,
		)
	}
}
