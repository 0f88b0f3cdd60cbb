// Package engine folds an ordered sequence of games into team and player
// ratings.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/foresight/internal/adapters/repository"
	"github.com/okian/foresight/internal/domain/impact"
	"github.com/okian/foresight/internal/domain/margin"
	"github.com/okian/foresight/internal/domain/model"
	"github.com/okian/foresight/internal/domain/scoring"
	"github.com/okian/foresight/internal/domain/season"
	"github.com/okian/foresight/pkg/logger"
	"github.com/okian/foresight/pkg/metrics"
)

// Default processor configuration constants.
const (
	defaultProgressEvery = 500
)

// Skip reasons as reported to metrics.
const (
	reasonDegenerate   = "degenerate_game"
	reasonUnresolvable = "unresolvable_score"
)

// HistorySink receives one observation per rating change, in commit order.
type HistorySink interface {
	Append(e model.HistoryEntry)
}

// Processor owns the rating store for the duration of a run. It is not safe
// for concurrent use.
type Processor struct {
	store   repository.Store
	history HistorySink

	scorer  *scoring.TeamScorer
	margin  *margin.Model
	seasons *season.Tracker
	impact  *impact.Model

	progressEvery int
	preseed       bool

	logger logger.Logger
}

// New constructs a Processor writing to store and history.
func New(store repository.Store, history HistorySink, opts ...Option) *Processor {
	p := &Processor{
		store:         store,
		history:       history,
		scorer:        scoring.NewTeamScorer(),
		margin:        margin.New(margin.DefaultWeights),
		seasons:       season.NewTracker(),
		impact:        impact.New(),
		progressEvery: defaultProgressEvery,
		preseed:       true,
		logger:        logger.Discard(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// change is one staged rating write.
type change struct {
	kind   model.Kind
	id     string
	rating float64
}

// Process folds a single game into the store.
//
// It returns nil when the game was applied, an error wrapping
// ErrDegenerateGame or ErrUnresolvableScore when it was skipped, and an error
// wrapping ErrGameFailed when its computation failed. In the last two cases
// the game left no trace in the store or history. A season regression
// triggered by the game is applied in every case.
func (p *Processor) Process(ctx context.Context, g model.Game) error {
	if err := p.observeSeason(ctx, g); err != nil {
		return err
	}

	if err := validate(g); err != nil {
		reason := reasonDegenerate
		if errors.Is(err, ErrUnresolvableScore) {
			reason = reasonUnresolvable
		}
		metrics.RecordGameSkipped(reason)
		p.logger.Warn(ctx, "skipping game",
			logger.String("gameID", g.ID),
			logger.String("reason", err.Error()),
		)
		return fmt.Errorf("game %s: %w", g.ID, err)
	}

	changes, res, err := p.stage(g)
	if err != nil {
		metrics.RecordGameFailure()
		p.logger.Error(ctx, "game rolled back",
			logger.String("gameID", g.ID),
			logger.Error(err),
		)
		return fmt.Errorf("game %s: %w", g.ID, err)
	}

	if err := p.commit(g, changes); err != nil {
		metrics.RecordGameFailure()
		return fmt.Errorf("game %s: %w: %w", g.ID, ErrGameFailed, err)
	}

	metrics.RecordGameProcessed()
	metrics.RecordTeamDelta(res.Delta)
	metrics.RecordPlayerUpdates(len(changes) - 2)
	p.logger.Debug(ctx, "game applied",
		logger.String("gameID", g.ID),
		logger.Float64("expected", res.Expected),
		logger.Float64("margin", res.Margin),
		logger.Float64("delta", res.Delta),
		logger.Int("players", len(changes)-2),
	)
	return nil
}

// observeSeason regresses the whole population when g opens a new season.
func (p *Processor) observeSeason(ctx context.Context, g model.Game) error {
	prev, changed := p.seasons.Observe(g.Season)
	if !changed {
		return nil
	}

	n, err := p.seasons.RegressAll(p.store)
	if err != nil {
		return fmt.Errorf("game %s: season %s: %w: %w", g.ID, g.Season, ErrGameFailed, err)
	}
	metrics.RecordSeasonTransition()
	p.logger.Info(ctx, "season change, ratings regressed toward priors",
		logger.String("from", prev),
		logger.String("to", g.Season),
		logger.Int("entities", n),
	)
	return nil
}

// validate decides whether g can be rated at all.
func validate(g model.Game) error {
	if g.Home == "" || g.Away == "" || g.Home == g.Away {
		return ErrDegenerateGame
	}

	seen := make(map[string]struct{}, 2)
	for _, t := range g.Teams {
		seen[t] = struct{}{}
	}
	for _, r := range g.Players {
		seen[r.TeamID] = struct{}{}
	}
	if len(seen) != 2 {
		return ErrDegenerateGame
	}
	for t := range seen {
		if t != g.Home && t != g.Away {
			return ErrDegenerateGame
		}
	}

	if g.HomePoints == nil || g.AwayPoints == nil {
		return ErrUnresolvableScore
	}
	return nil
}

// stage computes every rating write for g without touching the store. The
// first two changes are the home and away team.
func (p *Processor) stage(g model.Game) (changes []change, res scoring.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			changes = nil
			err = fmt.Errorf("%w: panic: %v", ErrGameFailed, r)
		}
	}()

	homeRating := p.store.Peek(model.KindTeam, g.Home)
	awayRating := p.store.Peek(model.KindTeam, g.Away)

	res = p.scorer.Score(scoring.Input{
		HomeRating:   homeRating,
		AwayRating:   awayRating,
		PointDiff:    *g.HomePoints - *g.AwayPoints,
		FactorMargin: p.margin.Composite(g.HomeFactors, g.AwayFactors),
	})
	if !isFinite(res.Delta) {
		return nil, res, fmt.Errorf("%w: non-finite team delta %v", ErrGameFailed, res.Delta)
	}

	newHome := homeRating + res.Delta
	newAway := awayRating - res.Delta
	changes = append(changes,
		change{kind: model.KindTeam, id: g.Home, rating: newHome},
		change{kind: model.KindTeam, id: g.Away, rating: newAway},
	)

	// Player impact sees the post-game team ratings.
	opponent := func(team string) float64 {
		if team == g.Home {
			return newAway
		}
		return newHome
	}

	staged := make(map[string]float64)
	for _, u := range p.impact.Deltas(g.Players, opponent) {
		current, ok := staged[u.PlayerID]
		if !ok {
			current = p.store.Peek(model.KindPlayer, u.PlayerID)
		}
		next := p.impact.Clamp(current + u.Delta)
		if !isFinite(next) {
			return nil, res, fmt.Errorf("%w: non-finite rating for player %q", ErrGameFailed, u.PlayerID)
		}
		staged[u.PlayerID] = next
		changes = append(changes, change{kind: model.KindPlayer, id: u.PlayerID, rating: next})
	}
	return changes, res, nil
}

// commit writes staged changes and their history entries in order.
func (p *Processor) commit(g model.Game, changes []change) error {
	for _, c := range changes {
		p.store.Rating(c.kind, c.id)
		if err := p.store.Set(c.kind, c.id, c.rating); err != nil {
			return err
		}
		p.history.Append(model.HistoryEntry{
			GameID:   g.ID,
			EntityID: c.id,
			Kind:     c.kind,
			Rating:   c.rating,
			Season:   g.Season,
		})
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
