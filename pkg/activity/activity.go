// Package activity keeps the session-local, human-readable feed of
// venue happenings. The feed is a bounded ring: once full, the oldest
// entry is evicted. Nothing here is persisted across sessions.
package activity

import (
	"sync"
	"time"
)

// Severity classifies a feed entry for presentation.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Entry is a single rendered feed item.
type Entry struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
}

// Log is a capped ring buffer of feed entries.
type Log struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	next     uint64
}

// NewLog creates a feed holding at most capacity entries.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = 1
	}
	return &Log{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Append adds an entry, evicting the oldest when at capacity.
func (l *Log) Append(severity Severity, message string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.next++
	e := Entry{
		Sequence:  l.next,
		Timestamp: time.Now(),
		Message:   message,
		Severity:  severity,
	}

	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries[len(l.entries)-1] = e
	} else {
		l.entries = append(l.entries, e)
	}
	return e
}

// Entries returns a snapshot of the feed, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the current number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
