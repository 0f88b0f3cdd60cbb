package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/foresight/internal/domain/model"
	"github.com/okian/foresight/pkg/logger"
	"github.com/okian/foresight/pkg/metrics"
)

// Diagnostic records a game that was skipped or rolled back.
type Diagnostic struct {
	GameID string
	Season string
	Err    error
}

// Summary describes one Run.
type Summary struct {
	Games       int // games in the input
	Processed   int
	Skipped     int
	Failed      int
	Seasons     []string // distinct seasons in processing order
	Interrupted bool     // the context was cancelled before the last game
	Duration    time.Duration
	Diagnostics []Diagnostic
}

// Validate checks that every game has an id and that ids strictly increase
// under model.IDOrder.
func Validate(games []model.Game) error {
	order := model.IDOrder(games)
	for i, g := range games {
		if g.ID == "" {
			return fmt.Errorf("game at index %d: %w", i, ErrEmptyGameID)
		}
		if i > 0 && order(g.ID, games[i-1].ID) <= 0 {
			return fmt.Errorf("game %s follows %s: %w", g.ID, games[i-1].ID, ErrUnorderedGames)
		}
	}
	return nil
}

// Preseed registers every team and player referenced by games at its prior,
// in first-appearance order.
func (p *Processor) Preseed(games []model.Game) {
	for _, g := range games {
		for _, t := range []string{g.Home, g.Away} {
			if t != "" {
				p.store.Rating(model.KindTeam, t)
			}
		}
		for _, t := range g.Teams {
			p.store.Rating(model.KindTeam, t)
		}
		for _, r := range g.Players {
			p.store.Rating(model.KindPlayer, r.PlayerID)
		}
	}
}

// Run validates games and folds them in order. Skipped and failed games are
// reported in the Summary and do not stop the run. Cancelling ctx stops the
// fold between games; the store then reflects every game before the stop and
// Run returns the context error alongside the partial Summary.
func (p *Processor) Run(ctx context.Context, games []model.Game) (sum Summary, err error) {
	sum = Summary{Games: len(games)}
	if err := Validate(games); err != nil {
		return sum, err
	}

	start := time.Now()
	defer func() {
		sum.Duration = time.Since(start)
		metrics.RecordFoldDuration(sum.Duration.Seconds())
	}()

	if p.preseed {
		p.Preseed(games)
	}

	p.logger.Info(ctx, "starting rating fold",
		logger.Int("games", len(games)),
		logger.Bool("preseed", p.preseed),
	)

	for i, g := range games {
		if err := ctx.Err(); err != nil {
			sum.Interrupted = true
			p.logger.Warn(ctx, "rating fold interrupted",
				logger.Int("processed", i),
				logger.Int("games", len(games)),
			)
			return sum, err
		}

		if n := len(sum.Seasons); n == 0 || sum.Seasons[n-1] != g.Season {
			sum.Seasons = append(sum.Seasons, g.Season)
		}

		err = p.Process(ctx, g)
		switch {
		case err == nil:
			sum.Processed++
		case errors.Is(err, ErrDegenerateGame), errors.Is(err, ErrUnresolvableScore):
			sum.Skipped++
			sum.Diagnostics = append(sum.Diagnostics, Diagnostic{GameID: g.ID, Season: g.Season, Err: err})
		default:
			sum.Failed++
			sum.Diagnostics = append(sum.Diagnostics, Diagnostic{GameID: g.ID, Season: g.Season, Err: err})
		}

		if p.progressEvery > 0 && (i+1)%p.progressEvery == 0 {
			p.logger.Info(ctx, "rating fold progress",
				logger.Int("done", i+1),
				logger.Int("games", len(games)),
				logger.String("season", g.Season),
			)
		}
	}

	p.logger.Info(ctx, "rating fold complete",
		logger.Int("processed", sum.Processed),
		logger.Int("skipped", sum.Skipped),
		logger.Int("failed", sum.Failed),
		logger.Duration("took", time.Since(start)),
	)
	return sum, nil
}
