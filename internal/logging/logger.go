// Package logging defines the structured Logger used across blueprint.
//
// The interface takes a message and variadic key-value pairs:
//
//	logger.Info("Pruned artifact", "path", "src/gui.py", "kind", "file")
//
// which maps one-to-one onto log/slog, the backend used by NewLogger.
package logging

import (
	"io"
	"log/slog"
)

// Logger defines the interface for structured logging.
type Logger interface {
	// Info logs normal progress such as a pass finishing or a file being renamed.
	Info(msg string, args ...any)

	// Error logs failures that are reported but do not abort the current step.
	Error(msg string, args ...any)

	// Warn logs unusual conditions, e.g. a git command exiting non-zero.
	Warn(msg string, args ...any)

	// Debug logs diagnostic detail, enabled with --verbose.
	Debug(msg string, args ...any)
}

// SlogLogger adapts a *slog.Logger to Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewLogger creates a text logger writing to w. Debug records are only
// emitted when verbose is set.
func NewLogger(w io.Writer, verbose bool) *SlogLogger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogLogger{logger: slog.New(handler)}
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}
