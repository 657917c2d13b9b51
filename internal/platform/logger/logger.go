package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Handlers and consumers receive it via
// dependency injection; nothing in this repo logs through a package global.
func New(service string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler).With("service", service)
}
