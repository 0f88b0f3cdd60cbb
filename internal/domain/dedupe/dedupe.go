// Package dedupe drops repeated input rows so each (game, team, player) line
// reaches the engine at most once.
package dedupe

import "strings"

// keySep cannot appear in a CSV field after trimming.
const keySep = "\x1f"

// Deduper records seen row keys. It is not safe for concurrent use; the
// loader consults it from a single goroutine while assembling games.
type Deduper interface {
	// SeenAndRecord checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(key string) bool

	// Dropped returns how many SeenAndRecord calls reported a repeat.
	Dropped() int64

	Size() int64
}

// inMemoryDeduper implements Deduper with a set of keys.
type inMemoryDeduper struct {
	seen    map[string]struct{}
	hint    int
	dropped int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{}, d.hint)
	return d
}

// SeenAndRecord implements Deduper.SeenAndRecord.
func (d *inMemoryDeduper) SeenAndRecord(key string) bool {
	if _, exists := d.seen[key]; exists {
		d.dropped++
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

// Dropped implements Deduper.Dropped.
func (d *inMemoryDeduper) Dropped() int64 {
	return d.dropped
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return int64(len(d.seen))
}

// RowKey builds the identity of one box-score row. Parts are joined with a
// separator that cannot collide with field content.
func RowKey(gameID, team, player string) string {
	return strings.Join([]string{gameID, team, player}, keySep)
}
