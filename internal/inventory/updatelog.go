package inventory

import (
	"kitchenstock/internal/models"
)

// DefaultLogCapacity is how many entries the in-memory log keeps.
const DefaultLogCapacity = 50

// UpdateLog is an append-only log that keeps only the most recent entries.
// It is not safe for concurrent use; the Engine serializes access.
type UpdateLog struct {
	capacity int
	entries  []models.UpdateLogEntry
}

func NewUpdateLog(capacity int) *UpdateLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &UpdateLog{capacity: capacity}
}

func (l *UpdateLog) Append(entry models.UpdateLogEntry) {
	l.entries = append(l.entries, entry)
	if over := len(l.entries) - l.capacity; over > 0 {
		kept := make([]models.UpdateLogEntry, l.capacity)
		copy(kept, l.entries[over:])
		l.entries = kept
	}
}

// Entries returns the retained entries, oldest first.
func (l *UpdateLog) Entries() []models.UpdateLogEntry {
	out := make([]models.UpdateLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Recent returns up to n entries, newest first.
func (l *UpdateLog) Recent(n int) []models.UpdateLogEntry {
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]models.UpdateLogEntry, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Replace swaps in a restored log, trimming to capacity.
func (l *UpdateLog) Replace(entries []models.UpdateLogEntry) {
	l.entries = nil
	for _, e := range entries {
		l.Append(e)
	}
}
