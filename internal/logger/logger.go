package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a logger writing to stdout. Production gets JSON, everything
// else gets the text handler.
func New(serviceName, env, level string) *slog.Logger {
	return NewWithWriter(serviceName, env, level, os.Stdout)
}

func NewWithWriter(serviceName, env, level string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	switch env {
	case "production", "prod":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h).With(slog.String("service", serviceName))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
