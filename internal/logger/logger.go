// Package logger centralizes structured logging for the adapter on top of
// the slog library. All log output goes to stderr: stdout is reserved for
// reports consumed by the invoking tool.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	defaultLogger *slog.Logger

	// Writer for logs. Overridable in tests.
	logWriter io.Writer = os.Stderr

	level = slog.LevelWarn
)

// Init initializes the logging system with the named level, one of
// "error", "warn", "info" or "debug". An empty name keeps the default (warn).
func Init(name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		// keep default
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		return fmt.Errorf("unknown log level %q; must be one of: error, warn, info, debug", name)
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: level})
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	return nil
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Info logs an informational message with optional key-value pairs.
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// WithModule returns a logger carrying the module name as an attribute.
func WithModule(name string) *slog.Logger {
	if defaultLogger == nil {
		return slog.Default().With("module", name)
	}
	return defaultLogger.With("module", name)
}

// IsDebugEnabled reports whether debug logging is active.
func IsDebugEnabled() bool {
	return level <= slog.LevelDebug
}
