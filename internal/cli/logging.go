// Package cli holds the logging setup shared by the mbedtargets and
// mbedrelease commands.
package cli

import (
	"io"
	"log/slog"
)

// NewLogger returns a logger writing to w at the level chosen by the
// verbose flag count, as JSON when jsonLogs is set.
func NewLogger(w io.Writer, verbosity int, jsonLogs bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: LogLevel(verbosity)}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LogLevel maps the verbose flag count to a level: warnings by default,
// info for -v, and debug for -vv or more.
func LogLevel(verbosity int) slog.Level {
	switch verbosity {
	case 0:
		return slog.LevelWarn
	case 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
