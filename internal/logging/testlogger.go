package logging

import (
	"strings"
	"sync"
)

// TestLogger captures log entries for verification in tests.
type TestLogger struct {
	mu      sync.Mutex
	entries []TestLogEntry
}

// TestLogEntry is a single captured record.
type TestLogEntry struct {
	Level   string
	Message string
	Args    []any
}

func NewTestLogger() *TestLogger {
	return &TestLogger{entries: make([]TestLogEntry, 0)}
}

func (t *TestLogger) add(level, msg string, args []any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, TestLogEntry{Level: level, Message: msg, Args: args})
}

func (t *TestLogger) Info(msg string, args ...any)  { t.add("info", msg, args) }
func (t *TestLogger) Error(msg string, args ...any) { t.add("error", msg, args) }
func (t *TestLogger) Warn(msg string, args ...any)  { t.add("warn", msg, args) }
func (t *TestLogger) Debug(msg string, args ...any) { t.add("debug", msg, args) }

// Entries returns a copy of everything logged so far.
func (t *TestLogger) Entries() []TestLogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TestLogEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// FindEntry returns the first entry at level whose message contains message.
func (t *TestLogger) FindEntry(level, message string) *TestLogEntry {
	for _, entry := range t.Entries() {
		if entry.Level == level && strings.Contains(entry.Message, message) {
			return &entry
		}
	}
	return nil
}

// Count returns the number of entries logged at level.
func (t *TestLogger) Count(level string) int {
	n := 0
	for _, entry := range t.Entries() {
		if entry.Level == level {
			n++
		}
	}
	return n
}
