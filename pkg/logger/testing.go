package logger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
)

// Entry is one message captured by a TestLogger
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

type entrySink struct {
	mu      sync.Mutex
	entries []Entry
}

// TestLogger forwards messages to t.Logf and keeps them for assertions
type TestLogger struct {
	T      *testing.T
	fields map[string]interface{}
	sink   *entrySink
}

// NewTestLogger creates a recording logger. t may be nil.
func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{T: t, sink: &entrySink{}}
}

func (l *TestLogger) log(level, msg string) {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}

	l.sink.mu.Lock()
	l.sink.entries = append(l.sink.entries, Entry{Level: level, Message: msg, Fields: fields})
	l.sink.mu.Unlock()

	if l.T != nil {
		l.T.Logf("[%s] %s%s", strings.ToUpper(level), msg, formatFields(fields))
	}
}

func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}

func (l *TestLogger) Debug(msg string) { l.log("debug", msg) }
func (l *TestLogger) Info(msg string)  { l.log("info", msg) }
func (l *TestLogger) Warn(msg string)  { l.log("warn", msg) }
func (l *TestLogger) Error(msg string) { l.log("error", msg) }

// Fatal records the message without exiting
func (l *TestLogger) Fatal(msg string) { l.log("fatal", msg) }

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a child logger sharing the parent's entries
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{T: l.T, fields: merged, sink: l.sink}
}

// Entries returns every captured entry, optionally filtered by level
func (l *TestLogger) Entries(level ...string) []Entry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	var out []Entry
	for _, e := range l.sink.entries {
		if len(level) == 0 || e.Level == level[0] {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns the captured messages at level
func (l *TestLogger) Messages(level string) []string {
	entries := l.Entries(level)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}
