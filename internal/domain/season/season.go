// Package season detects season boundaries and regresses every tracked
// rating toward its prior when one is crossed.
package season

import (
	"fmt"

	"github.com/okian/foresight/internal/adapters/repository"
	"github.com/okian/foresight/internal/domain/model"
)

// DefaultRegression keeps three quarters of an entity's distance from its prior.
const DefaultRegression = 0.75

// Tracker remembers the last season seen by the engine.
type Tracker struct {
	current    string
	regression float64
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithRegression sets the fraction of (rating - prior) kept across a boundary.
func WithRegression(f float64) Option {
	return func(t *Tracker) {
		if f >= 0 && f <= 1 {
			t.regression = f
		}
	}
}

// NewTracker creates a tracker that has not seen any season yet.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{regression: DefaultRegression}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Current returns the last observed season, or "" before the first game.
func (t *Tracker) Current() string { return t.current }

// Observe records season as current and reports whether this is a
// transition from an earlier season. The very first season is not a
// transition.
func (t *Tracker) Observe(season string) (prev string, changed bool) {
	prev = t.current
	t.current = season
	return prev, prev != "" && prev != season
}

// RegressAll pulls every team and player in store toward its prior and
// returns how many entities were touched.
func (t *Tracker) RegressAll(store repository.Store) (int, error) {
	n := 0
	for _, kind := range []model.Kind{model.KindTeam, model.KindPlayer} {
		for _, e := range store.Entries(kind) {
			if err := store.Set(kind, e.ID, Regress(e.Rating, e.Prior, t.regression)); err != nil {
				return n, fmt.Errorf("regress %s %q: %w", kind, e.ID, err)
			}
			n++
		}
	}
	return n, nil
}

// Regress returns prior + (rating - prior) * factor.
func Regress(rating, prior, factor float64) float64 {
	return prior + (rating-prior)*factor
}
