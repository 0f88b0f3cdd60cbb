// Package history keeps the append-only trail of ratings produced by the fold.
package history

import "github.com/okian/foresight/internal/domain/model"

// Recorder appends rating observations in processing order. It is owned by
// the single writer that drives the fold.
type Recorder struct {
	entries []model.HistoryEntry
	counts  map[model.Kind]int
}

// NewRecorder returns an empty recorder. capacity presizes the backing slice.
func NewRecorder(capacity int) *Recorder {
	if capacity < 0 {
		capacity = 0
	}
	return &Recorder{
		entries: make([]model.HistoryEntry, 0, capacity),
		counts:  make(map[model.Kind]int),
	}
}

// Append records one observation.
func (r *Recorder) Append(e model.HistoryEntry) {
	r.entries = append(r.entries, e)
	r.counts[e.Kind]++
}

// Len returns the number of observations across kinds.
func (r *Recorder) Len() int { return len(r.entries) }

// Count returns the number of observations of kind.
func (r *Recorder) Count(kind model.Kind) int { return r.counts[kind] }

// Entries returns a copy of every observation of kind, in append order.
func (r *Recorder) Entries(kind model.Kind) []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0, r.counts[kind])
	for _, e := range r.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// All returns a copy of every observation in append order.
func (r *Recorder) All() []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(r.entries))
	copy(out, r.entries)
	return out
}
