// Package logging builds the process-wide structured logger. Both binaries
// log JSON to stdout; code that logs through the slog default (the HTTP
// middleware, the NATS consumer) picks the same handler up via Setup.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds the JSON logger for a binary and installs it as the slog
// default so package-level slog calls share the handler.
func Setup(service, level string) *slog.Logger {
	logger := NewJSONLogger(service, level)
	slog.SetDefault(logger)
	return logger
}

func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
