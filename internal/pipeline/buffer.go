package pipeline

import "github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"

// DefaultBufferCapacity caps the number of retained log lines per run
const DefaultBufferCapacity = 200

// Buffer is an append-only, capacity-limited sequence of log entries.
// Appending beyond capacity evicts the oldest entries first. It is not
// safe for concurrent use; the run controller serializes access.
type Buffer struct {
	capacity int
	entries  []domain.LogEntry
}

// NewBuffer creates a buffer with the given capacity.
// Non-positive capacities fall back to DefaultBufferCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &Buffer{capacity: capacity}
}

// Append adds an entry, evicting the oldest if the buffer is full
func (b *Buffer) Append(entry domain.LogEntry) {
	b.entries = append(b.entries, entry)
	if len(b.entries) > b.capacity {
		b.entries = b.entries[len(b.entries)-b.capacity:]
	}
}

// Len returns the number of retained entries
func (b *Buffer) Len() int {
	return len(b.entries)
}

// Entries returns a copy of the retained entries in insertion order
func (b *Buffer) Entries() []domain.LogEntry {
	out := make([]domain.LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}
