// Package logger provides structured logging built on log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a new structured logger with the given component name and
// level.
func New(component, level string) *slog.Logger {
	return NewWithWriter(component, level, os.Stderr)
}

// NewWithWriter creates a new structured logger writing to the given writer.
func NewWithWriter(component, level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})

	return slog.New(handler).With(
		slog.String("component", component),
	)
}

// WithSession returns a logger scoped to one planning session.
func WithSession(log *slog.Logger, sessionID int) *slog.Logger {
	return log.With(slog.Int("session_id", sessionID))
}
