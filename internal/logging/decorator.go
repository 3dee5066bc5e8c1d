package logging

import "strings"

// PrefixLogger prefixes every message with a fixed component tag, e.g.
// "[prune] File deleted".
type PrefixLogger struct {
	inner  Logger
	prefix string
}

// WithPrefix wraps inner so that all messages carry prefix.
func WithPrefix(inner Logger, prefix string) *PrefixLogger {
	return &PrefixLogger{inner: OrNop(inner), prefix: prefix}
}

// Inner returns the wrapped logger.
func (d *PrefixLogger) Inner() Logger {
	return d.inner
}

func (d *PrefixLogger) format(msg string) string {
	if d.prefix == "" {
		return msg
	}
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(d.prefix)
	b.WriteString("] ")
	b.WriteString(msg)
	return b.String()
}

func (d *PrefixLogger) Info(msg string, args ...any) {
	d.inner.Info(d.format(msg), args...)
}

func (d *PrefixLogger) Error(msg string, args ...any) {
	d.inner.Error(d.format(msg), args...)
}

func (d *PrefixLogger) Warn(msg string, args ...any) {
	d.inner.Warn(d.format(msg), args...)
}

func (d *PrefixLogger) Debug(msg string, args ...any) {
	d.inner.Debug(d.format(msg), args...)
}
