// Package logger builds slog loggers for the CLI and services: a colorized
// human-friendly handler for terminals, or slog's JSON handler for
// structured logs.
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level  slog.Level
	json   bool
	writer io.Writer
}

// New creates a logger. Default is Info level, pretty output to stderr.
func New(opts ...Option) *slog.Logger {
	c := config{
		level:  slog.LevelInfo,
		writer: os.Stderr,
	}
	for _, opt := range opts {
		opt(&c)
	}

	if c.json {
		return slog.New(slog.NewJSONHandler(c.writer, &slog.HandlerOptions{Level: c.level}))
	}

	handler := charmlog.NewWithOptions(c.writer, charmlog.Options{
		ReportTimestamp: true,
		Level:           charmLevel(c.level),
	})
	return slog.New(handler)
}

func charmLevel(l slog.Level) charmlog.Level {
	switch {
	case l <= slog.LevelDebug:
		return charmlog.DebugLevel
	case l <= slog.LevelInfo:
		return charmlog.InfoLevel
	case l <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}
