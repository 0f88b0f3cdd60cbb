package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithPriors sets where first-reference ratings come from.
func WithPriors(p PriorSource) Option {
	return func(s *MemoryStore) {
		if p != nil {
			s.priors = p
		}
	}
}

// WithDefaultRating sets the rating used when no PriorSource is configured.
func WithDefaultRating(r float64) Option {
	return func(s *MemoryStore) {
		if r > 0 {
			s.defaultRating = r
		}
	}
}
