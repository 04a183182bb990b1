package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var log *slog.Logger

// level is shared by every handler this package builds so SetLevel takes
// effect without rebuilding them.
var level = new(slog.LevelVar)

func init() {
	level.Set(slog.LevelInfo)
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		SetLevel(levelStr)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
}

// ParseLevel maps debug, info, warn/warning and error (case-insensitive) to a
// slog level. ok is false for anything else.
func ParseLevel(s string) (lvl slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// SetLevel changes the minimum level. Unknown names are ignored.
func SetLevel(s string) {
	if lvl, ok := ParseLevel(s); ok {
		level.Set(lvl)
	}
}

// IsDebug returns true if debug logging is enabled
func IsDebug() bool {
	return level.Level() <= slog.LevelDebug
}

// Debug logs a debug message with structured fields
func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

// Info logs an informational message with structured fields
func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

// Warn logs a warning message with structured fields
func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

// Error logs an error message with structured fields
func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

// Fatal logs an error message and exits with status 1
func Fatal(msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}

// SetOutputForTest redirects log output to w and returns a function that
// restores the original output. Only for tests.
func SetOutputForTest(w io.Writer) func() {
	original := log
	log = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return func() {
		log = original
		slog.SetDefault(log)
	}
}
