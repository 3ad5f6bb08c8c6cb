package app

import (
	"io"
	"log/slog"
)

// newLogger creates the invocation logger. It does not set the global
// logger, allowing for isolated logger instances in tests. Every record
// carries the invocation id so that interleaved watch runs can be told apart.
func newLogger(levelStr, formatStr, invocationID string, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(handler).With("invocation_id", invocationID)
}
