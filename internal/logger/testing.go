package logger

import (
	"io"
	"log/slog"
	"time"
)

// NewSlogLogger creates a standalone Logger writing text records to w.
// It is intended for tests and tools that don't use the central configuration.
func NewSlogLogger(w io.Writer, level LogLevel, tz *time.Location) Logger {
	if tz == nil {
		tz = time.UTC
	}
	slogLevel := parseLogLevel(string(level))

	return &moduleLogger{
		logger:   slog.New(newTextHandler(w, slogLevel)),
		level:    slogLevel,
		timezone: tz,
	}
}
