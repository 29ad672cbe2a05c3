package mocks

import (
	"sync"

	"github.com/lembretes/pix-service/internal/domain/ports"
)

// LogEntry captures one logged message for assertions
type LogEntry struct {
	Level   string
	Message string
	Fields  []ports.Field
}

// MockLogger is a thread-safe logger that records entries for tests
type MockLogger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

// NewMockLogger creates a new mock logger
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (l *MockLogger) record(level, msg string, fields []ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Message: msg, Fields: fields})
}

// Info records an info entry
func (l *MockLogger) Info(msg string, fields ...ports.Field) { l.record("info", msg, fields) }

// Error records an error entry
func (l *MockLogger) Error(msg string, fields ...ports.Field) { l.record("error", msg, fields) }

// Warn records a warn entry
func (l *MockLogger) Warn(msg string, fields ...ports.Field) { l.record("warn", msg, fields) }

// Debug records a debug entry
func (l *MockLogger) Debug(msg string, fields ...ports.Field) { l.record("debug", msg, fields) }

// CountLevel returns how many entries were recorded at the given level
func (l *MockLogger) CountLevel(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}
