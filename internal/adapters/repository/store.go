// Package repository holds the mutable rating state for teams and players.
package repository

import "github.com/okian/foresight/internal/domain/model"

// Entry is one rated entity as seen by readers of the store.
type Entry struct {
	Kind   model.Kind
	ID     string
	Rating float64
	Prior  float64
	Rank   int // set only by Ranked/TopN
	seq    int
}

// PriorSource resolves the starting rating of an unseen entity.
type PriorSource interface {
	Prior(kind model.Kind, id string) (float64, bool)
}

// Store provides read/write access to the rating state.
//
// Implementations are owned by a single writer; they are not safe for
// concurrent mutation.
type Store interface {
	// Rating returns the current rating, initializing the entity at its
	// prior on first reference.
	Rating(kind model.Kind, id string) float64

	// Set replaces the rating of a tracked entity.
	// Returns ErrNotFound if the entity was never referenced.
	Set(kind model.Kind, id string, rating float64) error

	// Peek returns the current rating, or the prior an unseen entity would
	// start at, without tracking it.
	Peek(kind model.Kind, id string) float64

	// Lookup returns the entity without creating it.
	Lookup(kind model.Kind, id string) (Entry, bool)

	// Entries returns every tracked entity of kind in first-reference order.
	Entries(kind model.Kind) []Entry

	// Ranked returns Entries sorted by rating desc with ranks assigned.
	Ranked(kind model.Kind) []Entry

	// TopN returns the first n entries of Ranked.
	TopN(kind model.Kind, n int) ([]Entry, error)

	// Count returns the number of tracked entities of kind.
	Count(kind model.Kind) int
}
