package engine

import (
	"github.com/okian/foresight/internal/domain/impact"
	"github.com/okian/foresight/internal/domain/margin"
	"github.com/okian/foresight/internal/domain/scoring"
	"github.com/okian/foresight/internal/domain/season"
	"github.com/okian/foresight/pkg/logger"
)

// Option applies a configuration option to the Processor.
type Option func(*Processor)

// WithScorer sets the team Elo scorer.
func WithScorer(s *scoring.TeamScorer) Option {
	return func(p *Processor) {
		if s != nil {
			p.scorer = s
		}
	}
}

// WithMarginModel sets the four-factor composite model.
func WithMarginModel(m *margin.Model) Option {
	return func(p *Processor) {
		if m != nil {
			p.margin = m
		}
	}
}

// WithSeasonTracker sets the season boundary tracker.
func WithSeasonTracker(t *season.Tracker) Option {
	return func(p *Processor) {
		if t != nil {
			p.seasons = t
		}
	}
}

// WithImpactModel sets the player impact model.
func WithImpactModel(m *impact.Model) Option {
	return func(p *Processor) {
		if m != nil {
			p.impact = m
		}
	}
}

// WithLogger sets a custom logger for the processor.
func WithLogger(l logger.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProgressEvery logs a progress line every n games. 0 disables it.
func WithProgressEvery(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.progressEvery = n
		}
	}
}

// WithPreseed controls whether Run registers every team and player found in
// the input at its prior before the first game.
func WithPreseed(enabled bool) Option {
	return func(p *Processor) {
		p.preseed = enabled
	}
}
