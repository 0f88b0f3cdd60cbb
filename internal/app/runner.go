// Package app wires the loader, the rating engine and the exporters into
// one batch run.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/okian/foresight/internal/adapters/export"
	"github.com/okian/foresight/internal/adapters/history"
	"github.com/okian/foresight/internal/adapters/loader"
	"github.com/okian/foresight/internal/adapters/repository"
	"github.com/okian/foresight/internal/config"
	"github.com/okian/foresight/internal/domain/engine"
	"github.com/okian/foresight/internal/domain/impact"
	"github.com/okian/foresight/internal/domain/margin"
	"github.com/okian/foresight/internal/domain/model"
	"github.com/okian/foresight/internal/domain/priors"
	"github.com/okian/foresight/internal/domain/scoring"
	"github.com/okian/foresight/internal/domain/season"
	"github.com/okian/foresight/pkg/logger"
	"github.com/okian/foresight/pkg/metrics"
)

// Summary log sizes.
const (
	summaryTeams   = 5
	summaryPlayers = 10
)

// historyPerGame presizes the history recorder.
const historyPerGame = 20

// Run log location under the output directory.
const (
	LogDir  = "logs"
	LogName = "elo_calculation.log"
)

// LogPath returns the default run log for cfg.
func LogPath(cfg *config.Config) string {
	if cfg.LogFile != "" {
		return cfg.LogFile
	}
	return filepath.Join(cfg.OutputDir, LogDir, LogName)
}

// Report describes one run.
type Report struct {
	RunID    uuid.UUID
	Load     loader.Stats
	Summary  engine.Summary
	Snapshot export.Snapshot
	Paths    export.Paths
	Sunk     bool // the run was written to the relational sink
}

// Runner executes rating runs.
type Runner struct {
	cfg    *config.Config
	logger logger.Logger
}

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithConfig sets the run configuration.
func WithConfig(cfg *config.Config) Option {
	return func(r *Runner) {
		if cfg != nil {
			r.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New constructs a Runner. Without WithConfig it uses config.New().
func New(opts ...Option) *Runner {
	r := &Runner{
		cfg:    config.New(),
		logger: logger.Discard(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run loads the input, folds every game and exports the result.
//
// When ctx is cancelled during the fold, the ratings of every game before
// the stop are still exported and Run returns the context error with the
// report.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	rep := Report{RunID: uuid.New()}
	started := time.Now()
	cfg := r.cfg

	if err := cfg.Validate(); err != nil {
		return rep, err
	}
	layout, err := loader.ParseLayout(cfg.InputLayout)
	if err != nil {
		return rep, err
	}

	r.logger.Info(ctx, "rating run starting",
		logger.String("runID", rep.RunID.String()),
		logger.String("layout", string(layout)),
		logger.String("dataDir", cfg.DataDir),
	)

	games, stats, err := loader.New(
		loader.WithLayout(layout),
		loader.WithDataDir(cfg.DataDir),
		loader.WithInputFile(cfg.InputFile),
		loader.WithDefaultSeason(cfg.DefaultSeason),
		loader.WithNameCorrections(cfg.NameCorrections),
		loader.WithLogger(r.logger.Named("loader")),
	).Load(ctx)
	rep.Load = stats
	if err != nil {
		return rep, fmt.Errorf("load: %w", err)
	}

	store := repository.NewMemoryStore(repository.WithPriors(priors.New(
		priors.WithTeamPriors(cfg.TeamPriors),
		priors.WithPlayerPriors(cfg.PlayerPriors),
		priors.WithDefaults(cfg.DefaultTeamRating, cfg.DefaultPlayerRating),
	)))
	rec := history.NewRecorder(len(games) * historyPerGame)

	rep.Summary, err = r.processor(store, rec).Run(ctx, games)
	if err != nil && !rep.Summary.Interrupted {
		return rep, fmt.Errorf("rating fold: %w", err)
	}
	foldErr := err

	// Whatever was processed is exported, even after an interrupt.
	out := context.WithoutCancel(ctx)

	metrics.UpdateTrackedEntities(string(model.KindTeam), store.Count(model.KindTeam))
	metrics.UpdateTrackedEntities(string(model.KindPlayer), store.Count(model.KindPlayer))

	rep.Snapshot, err = export.Take(store, cfg.TopN)
	if err != nil {
		return rep, err
	}
	entries := rec.All()

	rep.Paths, err = export.NewCSVWriter(
		export.WithOutputDir(cfg.OutputDir),
		export.WithTopN(cfg.TopN),
		export.WithLogger(r.logger.Named("export")),
	).Write(out, rep.Snapshot, entries)
	if err != nil {
		return rep, fmt.Errorf("export: %w", err)
	}

	if cfg.SinkDriver != config.SinkNone {
		if err := r.sink(out, rep, started, entries); err != nil {
			return rep, err
		}
		rep.Sunk = true
	}

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			r.logger.Warn(out, "metrics textfile not written", logger.Error(err))
		}
	}

	r.logSummary(out, rep)
	return rep, foldErr
}

// processor builds the rating engine from the configuration.
func (r *Runner) processor(store repository.Store, rec engine.HistorySink) *engine.Processor {
	cfg := r.cfg
	return engine.New(store, rec,
		engine.WithScorer(scoring.NewTeamScorer(
			scoring.WithHomeAdvantage(cfg.HomeAdvantage),
			scoring.WithK(cfg.TeamK),
			scoring.WithMarginWeights(cfg.MarginActualWeight, cfg.MarginFactorWeight),
		)),
		engine.WithMarginModel(margin.New(margin.Weights{
			EFG: cfg.EFGWeight,
			TOV: cfg.TOVWeight,
			ORB: cfg.ORBWeight,
			FTR: cfg.FTRWeight,
		})),
		engine.WithSeasonTracker(season.NewTracker(season.WithRegression(cfg.SeasonRegression))),
		engine.WithImpactModel(impact.New(
			impact.WithMinMinutes(cfg.MinMinutes),
			impact.WithK(cfg.PlayerK),
			impact.WithSignalWeights(cfg.ImpactPMWeight, cfg.ImpactBPMWeight),
			impact.WithCap(cfg.ImpactCap),
			impact.WithMinutesExponent(cfg.MinutesExponent),
			impact.WithOpponentBaseline(cfg.OpponentBaseline),
			impact.WithBounds(cfg.PlayerRatingMin, cfg.PlayerRatingMax),
		)),
		engine.WithLogger(r.logger.Named("engine")),
		engine.WithProgressEvery(cfg.ProgressEvery),
		engine.WithPreseed(cfg.Preseed),
	)
}

// sink writes the run to the configured database.
func (r *Runner) sink(ctx context.Context, rep Report, started time.Time, entries []model.HistoryEntry) (err error) {
	s, err := export.OpenSQLSink(ctx, export.Driver(r.cfg.SinkDriver), r.cfg.SinkDSN)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()

	sum := rep.Summary
	return s.Write(ctx, export.Run{
		ID:          rep.RunID,
		StartedAt:   started,
		Games:       sum.Games,
		Processed:   sum.Processed,
		Skipped:     sum.Skipped,
		Failed:      sum.Failed,
		Interrupted: sum.Interrupted,
		Snapshot:    rep.Snapshot,
		History:     entries,
	})
}

// logSummary reports the leaders and the watched entities.
func (r *Runner) logSummary(ctx context.Context, rep Report) {
	sum := rep.Summary
	r.logger.Info(ctx, "rating run summary",
		logger.String("runID", rep.RunID.String()),
		logger.Int("games", sum.Games),
		logger.Int("processed", sum.Processed),
		logger.Int("skipped", sum.Skipped),
		logger.Int("failed", sum.Failed),
		logger.Any("seasons", sum.Seasons),
		logger.Bool("interrupted", sum.Interrupted),
		logger.Duration("fold", sum.Duration),
	)
	for _, d := range sum.Diagnostics {
		r.logger.Debug(ctx, "game not applied",
			logger.String("gameID", d.GameID),
			logger.String("season", d.Season),
			logger.Error(d.Err),
		)
	}

	leaders := func(label string, entries []repository.Entry, n int) {
		for _, e := range entries[:min(n, len(entries))] {
			r.logger.Info(ctx, label,
				logger.Int("rank", e.Rank),
				logger.String("id", e.ID),
				logger.Float64("elo", round1(e.Rating)),
			)
		}
	}
	leaders("top team", rep.Snapshot.Teams, summaryTeams)
	leaders("top player", rep.Snapshot.Players, summaryPlayers)

	watch := func(label string, entries []repository.Entry, ids []string) {
		for _, id := range ids {
			e, ok := export.Find(entries, id)
			if !ok {
				continue
			}
			r.logger.Info(ctx, label,
				logger.String("id", id),
				logger.Float64("elo", round1(e.Rating)),
				logger.Int("rank", e.Rank),
				logger.Int("of", len(entries)),
			)
		}
	}
	watch("watched team", rep.Snapshot.Teams, r.cfg.WatchTeams)
	watch("watched player", rep.Snapshot.Players, r.cfg.WatchPlayers)

	r.logger.Info(ctx, "all files saved", logger.String("dir", r.cfg.OutputDir))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
