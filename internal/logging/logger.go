// Package logging provides a structured logging wrapper around log/slog with
// optional file output and rotation.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Format is the output format for logs.
type Format string

const (
	// FormatText outputs human-readable text logs.
	FormatText Format = "text"
	// FormatJSON outputs structured JSON logs.
	FormatJSON Format = "json"
)

// Config holds configuration for a logger.
type Config struct {
	// FilePath is the log file. When empty, Output is used instead.
	FilePath string
	// Output receives logs when FilePath is empty. Nil disables logging.
	Output io.Writer
	// Level is the minimum level written.
	Level slog.Level
	// Format is the output format (text or json).
	Format Format
	// MaxSizeMB is the maximum size in MB before rotation.
	MaxSizeMB int
	// MaxBackups is the maximum number of rotated files to keep.
	MaxBackups int
}

// Logger wraps slog.Logger.
type Logger struct {
	logger *slog.Logger
	closer io.Closer
}

var (
	nop = &Logger{logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}

	globalMu sync.RWMutex
	global   *Logger
)

// ParseLevel parses a level name (debug, info, warn/warning, error).
// The empty string selects info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// ParseFormat parses a format name. The empty string selects text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", s)
	}
}

// New creates a logger from config. With neither a file path nor an output
// writer it returns the no-op logger.
func New(config Config) *Logger {
	var (
		writer io.Writer
		closer io.Closer
	)

	switch {
	case config.FilePath != "":
		lj := &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.MaxSizeMB,
			MaxBackups: config.MaxBackups,
			Compress:   true,
		}
		writer, closer = lj, lj
	case config.Output != nil:
		writer = config.Output
	default:
		return nop
	}

	opts := &slog.HandlerOptions{Level: config.Level}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	return &Logger{logger: slog.New(handler), closer: closer}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return nop
}

// Init installs the process-wide logger returned by Get.
func Init(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = l
}

// Get returns the process-wide logger, or the no-op logger before Init.
func Get() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if global == nil {
		return nop
	}
	return global
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// With returns a child logger with the given key-value pairs attached.
func (l *Logger) With(args ...any) *Logger {
	if l == nop {
		return nop
	}
	return &Logger{logger: l.logger.With(args...)}
}

// WithComponent returns a child logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.logger.Enabled(context.Background(), level)
}

// IsEnabled returns true unless l is the no-op logger.
func (l *Logger) IsEnabled() bool {
	return l != nop
}

// Slog returns the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

// Close closes the log file, if any. Child loggers share the parent's file
// and must not be closed.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
