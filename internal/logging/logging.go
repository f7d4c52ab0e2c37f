// Package logging provides structured logging using Go's slog package.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
)

func init() {
	// Initialize with a default logger (text format, Info level)
	InitLogger(LevelInfo, FormatText)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// ParseLevel converts a level name ("debug", "info", "warn", "error")
// into a Level. Unknown names fall back to Info.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ParseFormat converts a format name ("json", "text") into a Format.
// Unknown names fall back to text.
func ParseFormat(name string) Format {
	if strings.EqualFold(strings.TrimSpace(name), "json") {
		return FormatJSON
	}
	return FormatText
}

// InitLogger initializes the global logger with the specified level and format.
func InitLogger(level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// GetLogger returns the global logger instance.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// Helper functions for common logging patterns

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// SongExported logs a successful song export.
func SongExported(songID int64, title, path string, args ...any) {
	allArgs := []any{
		"song_id", songID,
		"title", title,
		"path", path,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("song_exported", allArgs...)
}

// SongFailed logs a per-song export failure.
func SongFailed(songID int64, title string, err error, args ...any) {
	allArgs := []any{
		"song_id", songID,
		"title", title,
		"error", err.Error(),
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Error("song_failed", allArgs...)
}

// SongSkipped logs a song that was skipped rather than written.
func SongSkipped(songID int64, title, reason string, args ...any) {
	allArgs := []any{
		"song_id", songID,
		"title", title,
		"reason", reason,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("song_skipped", allArgs...)
}

// BatchSummary logs the final counts of a batch export run.
func BatchSummary(total, exported, skipped, failed int, duration time.Duration, args ...any) {
	allArgs := []any{
		"total", total,
		"exported", exported,
		"skipped", skipped,
		"failed", failed,
		"duration_ms", duration.Milliseconds(),
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("batch_summary", allArgs...)
}

// DatabaseOpened logs a successful database open.
func DatabaseOpened(path string, songCount int, args ...any) {
	allArgs := []any{
		"path", path,
		"song_count", songCount,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("database_opened", allArgs...)
}
