// Package logging provides structured logging for show-runtime.
//
// Log records go to stderr. Stdout is reserved for the final report.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger creates a stderr logger with the specified format and level.
// Format should be "json" or "text".
// Level should be "debug", "info", "warn", or "error".
// Verbose forces debug level and adds source locations.
func NewLogger(format, level string, verbose bool) *slog.Logger {
	return New(os.Stderr, format, level, verbose)
}

// NewLoggerWithWriter creates a logger that writes to a custom writer.
// Useful for testing.
func NewLoggerWithWriter(w io.Writer, format, level string) *slog.Logger {
	return New(w, format, level, false)
}

// New creates a logger writing to w.
func New(w io.Writer, format, level string, verbose bool) *slog.Logger {
	logLevel := parseLevel(level)
	if verbose {
		logLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: verbose,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops every record.
// The dashboard uses it so log lines do not tear the rendered view.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// parseLevel converts a string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// SetDefault sets the default logger for the slog package.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
