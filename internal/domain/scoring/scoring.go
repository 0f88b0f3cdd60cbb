// Package scoring implements the team Elo arithmetic: expected score,
// actual score and the margin-scaled zero-sum delta.
package scoring

import "math"

// Default team scoring constants.
const (
	DefaultHomeAdvantage      = 100.0
	DefaultK                  = 16.0
	DefaultActualMarginWeight = 0.7
	DefaultFactorMarginWeight = 0.3

	eloScale = 400.0
)

// Option applies a configuration option to the TeamScorer.
type Option func(*TeamScorer)

// WithHomeAdvantage sets the rating bonus given to the home team.
func WithHomeAdvantage(points float64) Option {
	return func(s *TeamScorer) {
		s.homeAdvantage = points
	}
}

// WithK sets the team K-factor.
func WithK(k float64) Option {
	return func(s *TeamScorer) {
		if k > 0 {
			s.k = k
		}
	}
}

// WithMarginWeights sets how the actual point differential and the
// four-factor composite are blended into one margin.
func WithMarginWeights(actual, factors float64) Option {
	return func(s *TeamScorer) {
		if actual >= 0 && factors >= 0 {
			s.actualWeight = actual
			s.factorWeight = factors
		}
	}
}

// Input carries what the scorer needs from one game.
type Input struct {
	HomeRating   float64 // current rating, before home advantage
	AwayRating   float64
	PointDiff    float64 // home points minus away points
	FactorMargin float64 // four-factor composite
}

// Result is the outcome of scoring one game. Delta is added to the home
// team and subtracted from the away team.
type Result struct {
	Expected float64
	Actual   float64
	Margin   float64
	Delta    float64
}

// TeamScorer computes zero-sum team rating deltas.
type TeamScorer struct {
	homeAdvantage float64
	k             float64
	actualWeight  float64
	factorWeight  float64
}

// NewTeamScorer creates a scorer with configuration options.
func NewTeamScorer(opts ...Option) *TeamScorer {
	s := &TeamScorer{
		homeAdvantage: DefaultHomeAdvantage,
		k:             DefaultK,
		actualWeight:  DefaultActualMarginWeight,
		factorWeight:  DefaultFactorMarginWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the home team's delta for one game.
func (s *TeamScorer) Score(in Input) Result {
	home := in.HomeRating + s.homeAdvantage
	expected := ExpectedScore(home, in.AwayRating)
	actual := ActualScore(in.PointDiff)
	margin := s.actualWeight*in.PointDiff + s.factorWeight*in.FactorMargin

	return Result{
		Expected: expected,
		Actual:   actual,
		Margin:   margin,
		Delta:    s.k * (actual - expected) * MarginMultiplier(margin),
	}
}

// ExpectedScore is the logistic win expectancy of a rated ra against rb.
func ExpectedScore(ra, rb float64) float64 {
	return 1 / (1 + math.Pow(10, (rb-ra)/eloScale))
}

// ActualScore maps a point differential to 1, 0.5 or 0.
func ActualScore(pointDiff float64) float64 {
	switch {
	case pointDiff > 0:
		return 1
	case pointDiff == 0:
		return 0.5
	default:
		return 0
	}
}

// MarginMultiplier dampens large margins logarithmically.
func MarginMultiplier(margin float64) float64 {
	return math.Log(math.Abs(margin) + 1)
}
