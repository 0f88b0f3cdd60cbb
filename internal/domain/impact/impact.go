// Package impact turns a game's qualifying player box lines into weighted,
// population-normalized rating deltas.
package impact

import (
	"math"

	"github.com/okian/foresight/internal/domain/model"
)

// Default player impact constants.
const (
	DefaultMinMinutes       = 10.0
	DefaultK                = 10.0
	DefaultPlusMinusWeight  = 0.6
	DefaultBPMWeight        = 0.4
	DefaultCap              = 2.0
	DefaultMinutesExponent  = 0.7
	DefaultOpponentBaseline = 1500.0
	DefaultFloor            = 1200.0
	DefaultCeiling          = 2000.0

	minutesFloor = 0.1
)

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithMinMinutes sets the minutes a player needs to enter the cohort.
func WithMinMinutes(m float64) Option {
	return func(md *Model) {
		if m >= 0 {
			md.minMinutes = m
		}
	}
}

// WithK sets the player K-factor.
func WithK(k float64) Option {
	return func(md *Model) {
		if k > 0 {
			md.k = k
		}
	}
}

// WithSignalWeights sets the blend of plus-minus and BPM z-scores.
func WithSignalWeights(plusMinus, bpm float64) Option {
	return func(md *Model) {
		md.pmWeight = plusMinus
		md.bpmWeight = bpm
	}
}

// WithCap bounds |impact| before weighting.
func WithCap(c float64) Option {
	return func(md *Model) {
		if c > 0 {
			md.cap = c
		}
	}
}

// WithMinutesExponent sets the sub-linear minutes share exponent.
func WithMinutesExponent(e float64) Option {
	return func(md *Model) {
		if e > 0 {
			md.exponent = e
		}
	}
}

// WithOpponentBaseline sets the rating at which opponent strength is neutral.
func WithOpponentBaseline(b float64) Option {
	return func(md *Model) {
		if b > 0 {
			md.baseline = b
		}
	}
}

// WithBounds sets the hard player rating range.
func WithBounds(floor, ceiling float64) Option {
	return func(md *Model) {
		if floor < ceiling {
			md.floor = floor
			md.ceiling = ceiling
		}
	}
}

// Model computes player deltas for one game at a time.
type Model struct {
	minMinutes float64
	k          float64
	pmWeight   float64
	bpmWeight  float64
	cap        float64
	exponent   float64
	baseline   float64
	floor      float64
	ceiling    float64
}

// New creates a Model with configuration options.
func New(opts ...Option) *Model {
	m := &Model{
		minMinutes: DefaultMinMinutes,
		k:          DefaultK,
		pmWeight:   DefaultPlusMinusWeight,
		bpmWeight:  DefaultBPMWeight,
		cap:        DefaultCap,
		exponent:   DefaultMinutesExponent,
		baseline:   DefaultOpponentBaseline,
		floor:      DefaultFloor,
		ceiling:    DefaultCeiling,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Update is the computed change for one qualifying player.
type Update struct {
	PlayerID string
	TeamID   string
	Minutes  float64
	Impact   float64 // raw blended z-score
	Capped   float64
	Weight   float64
	Delta    float64
}

// OpponentRating returns the rating of the team a player's team faced.
type OpponentRating func(teamID string) float64

// Deltas computes one Update per qualifying row, in row order. It returns nil
// when no row meets the minutes threshold.
func (m *Model) Deltas(rows []model.PlayerGameStat, opponent OpponentRating) []Update {
	cohort := make([]model.PlayerGameStat, 0, len(rows))
	for _, r := range rows {
		if finite(r.Minutes) >= m.minMinutes {
			cohort = append(cohort, r)
		}
	}
	if len(cohort) == 0 {
		return nil
	}

	pmAdj := make([]float64, len(cohort))
	bpm := make([]float64, len(cohort))
	total := 0.0
	for i, r := range cohort {
		minutes := finite(r.Minutes)
		perMin := finite(r.PlusMinus) / math.Max(minutes, minutesFloor)
		pmAdj[i] = perMin * (opponent(r.TeamID) / m.baseline)
		bpm[i] = finite(r.BPM)
		total += minutes
	}

	pmZ := ZScores(pmAdj)
	bpmZ := ZScores(bpm)

	out := make([]Update, len(cohort))
	for i, r := range cohort {
		raw := m.pmWeight*pmZ[i] + m.bpmWeight*bpmZ[i]
		capped := m.Cap(raw)
		weight := 0.0
		if total > 0 {
			weight = math.Pow(finite(r.Minutes)/total, m.exponent)
		}
		out[i] = Update{
			PlayerID: r.PlayerID,
			TeamID:   r.TeamID,
			Minutes:  finite(r.Minutes),
			Impact:   raw,
			Capped:   capped,
			Weight:   weight,
			Delta:    m.k * weight * capped,
		}
	}
	return out
}

// Cap clamps a raw impact to [-cap, cap].
func (m *Model) Cap(impact float64) float64 {
	return clamp(impact, -m.cap, m.cap)
}

// Clamp bounds a player rating to the configured range.
func (m *Model) Clamp(rating float64) float64 {
	return clamp(rating, m.floor, m.ceiling)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
