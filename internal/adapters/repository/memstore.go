package repository

import (
	"fmt"
	"sort"

	"github.com/okian/foresight/internal/domain/model"
	"github.com/okian/foresight/pkg/metrics"
)

const defaultRating = 1500.0

// record stores the current and prior rating plus the first-reference
// sequence number used as the ranking tie-break.
type record struct {
	rating float64
	prior  float64
	seq    int
}

// namespace is the per-kind keyspace.
type namespace struct {
	byID  map[string]*record
	order []string
}

// MemoryStore is an in-memory Store keyed by (kind, id).
type MemoryStore struct {
	priors        PriorSource
	defaultRating float64
	spaces        map[model.Kind]*namespace
}

// NewMemoryStore constructs an empty store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		defaultRating: defaultRating,
		spaces:        make(map[model.Kind]*namespace),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) space(kind model.Kind) *namespace {
	ns, ok := s.spaces[kind]
	if !ok {
		ns = &namespace{byID: make(map[string]*record)}
		s.spaces[kind] = ns
	}
	return ns
}

func (s *MemoryStore) prior(kind model.Kind, id string) float64 {
	if s.priors == nil {
		return s.defaultRating
	}
	p, _ := s.priors.Prior(kind, id)
	return p
}

// Rating implements Store.Rating.
func (s *MemoryStore) Rating(kind model.Kind, id string) float64 {
	ns := s.space(kind)
	if rec, ok := ns.byID[id]; ok {
		return rec.rating
	}

	prior := s.prior(kind, id)
	ns.byID[id] = &record{rating: prior, prior: prior, seq: len(ns.order)}
	ns.order = append(ns.order, id)
	metrics.UpdateTrackedEntities(string(kind), len(ns.order))
	return prior
}

// Set implements Store.Set.
func (s *MemoryStore) Set(kind model.Kind, id string, rating float64) error {
	rec, ok := s.space(kind).byID[id]
	if !ok {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	rec.rating = rating
	return nil
}

// Peek implements Store.Peek.
func (s *MemoryStore) Peek(kind model.Kind, id string) float64 {
	if rec, ok := s.space(kind).byID[id]; ok {
		return rec.rating
	}
	return s.prior(kind, id)
}

// Lookup implements Store.Lookup.
func (s *MemoryStore) Lookup(kind model.Kind, id string) (Entry, bool) {
	rec, ok := s.space(kind).byID[id]
	if !ok {
		return Entry{}, false
	}
	return Entry{Kind: kind, ID: id, Rating: rec.rating, Prior: rec.prior, seq: rec.seq}, true
}

// Entries implements Store.Entries.
func (s *MemoryStore) Entries(kind model.Kind) []Entry {
	ns := s.space(kind)
	out := make([]Entry, 0, len(ns.order))
	for _, id := range ns.order {
		rec := ns.byID[id]
		out = append(out, Entry{Kind: kind, ID: id, Rating: rec.rating, Prior: rec.prior, seq: rec.seq})
	}
	return out
}

// Ranked implements Store.Ranked.
func (s *MemoryStore) Ranked(kind model.Kind) []Entry {
	entries := s.Entries(kind)
	sortEntries(entries)
	assignRanks(entries)
	return entries
}

// TopN implements Store.TopN.
func (s *MemoryStore) TopN(kind model.Kind, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	entries := s.Ranked(kind)
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(kind model.Kind) int {
	return len(s.space(kind).order)
}

// sortEntries orders by rating desc; equal ratings keep first-reference order.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].seq < entries[j].seq
	})
}

// assignRanks numbers entries 1..n in their sorted order. Ties do not share
// a rank; the first-reference order decides who ranks first.
func assignRanks(entries []Entry) {
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
