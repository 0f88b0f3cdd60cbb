// Package margin estimates a game's efficiency margin from the two teams'
// four-factor lines.
package margin

import (
	"math"

	"github.com/okian/foresight/internal/domain/model"
)

// DefaultPace is used when the home team's pace is unknown.
const DefaultPace = 100.0

// Weights are the per-factor coefficients of the composite.
type Weights struct {
	EFG float64
	TOV float64
	ORB float64
	FTR float64
}

// DefaultWeights follow the usual four-factor importance ordering.
var DefaultWeights = Weights{EFG: 0.4, TOV: 0.25, ORB: 0.2, FTR: 0.15}

// Model computes the four-factor composite. The zero value is not usable;
// call New.
type Model struct {
	w Weights
}

// New returns a Model using w. A zero Weights falls back to DefaultWeights.
func New(w Weights) *Model {
	if w == (Weights{}) {
		w = DefaultWeights
	}
	return &Model{w: w}
}

// Composite returns the pace-scaled factor margin from the home team's
// perspective. It never fails: unknown factors count as 0 and unknown pace
// as DefaultPace.
func (m *Model) Composite(home, away model.FourFactors) float64 {
	efg := value(home.EFG, 0) - value(away.EFG, 0)
	// fewer turnovers is better, so the differential is reversed
	tov := value(away.TOV, 0) - value(home.TOV, 0)
	orb := value(home.ORB, 0) - value(away.ORB, 0)
	ftr := value(home.FTR, 0) - value(away.FTR, 0)
	pace := value(home.Pace, DefaultPace)

	return (m.w.EFG*efg + m.w.TOV*tov + m.w.ORB*orb + m.w.FTR*ftr) * pace / 100
}

// Composite is a convenience wrapper using DefaultWeights.
func Composite(home, away model.FourFactors) float64 {
	return New(DefaultWeights).Composite(home, away)
}

func value(p *float64, def float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return def
	}
	return *p
}
