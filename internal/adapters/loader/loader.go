// Package loader reads box score CSV files and materializes them as games
// sorted by id, ready for the rating engine.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/foresight/internal/domain/dedupe"
	"github.com/okian/foresight/internal/domain/model"
	"github.com/okian/foresight/pkg/logger"
)

// Layout selects how input files are organized.
type Layout string

// Supported layouts.
const (
	// LayoutNormalized is one CSV with one row per player per game carrying
	// the team's four factors.
	LayoutNormalized Layout = "normalized"
	// LayoutUnified is the collector's three files: basic and advanced box
	// scores plus per-team four factors.
	LayoutUnified Layout = "unified"
)

// Input file names.
const (
	BasicFile       = "basic_boxscore.csv"
	AdvancedFile    = "advanced_boxscore.csv"
	FourFactorsFile = "four_factors.csv"
	NormalizedFile  = "boxscores.csv"
)

// Default loader configuration constants.
const (
	DefaultSeason  = "2024"
	defaultDataDir = "data"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case LayoutNormalized, LayoutUnified:
		return l, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownLayout)
	}
}

// Stats describes one Load.
type Stats struct {
	Rows       int // box score rows read
	Games      int
	Duplicates int
	Malformed  int
	Issues     []error // the first malformed field reports, wrapping ErrMalformedField
}

// Loader reads games from disk.
type Loader struct {
	layout        Layout
	dataDir       string
	inputFile     string
	defaultSeason string
	names         *Names
	logger        logger.Logger
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithLayout selects the input layout.
func WithLayout(l Layout) Option {
	return func(ld *Loader) {
		if l != "" {
			ld.layout = l
		}
	}
}

// WithDataDir sets the directory holding the unified layout's files and the
// default normalized file.
func WithDataDir(dir string) Option {
	return func(ld *Loader) {
		if dir != "" {
			ld.dataDir = dir
		}
	}
}

// WithInputFile sets the normalized layout's file.
func WithInputFile(path string) Option {
	return func(ld *Loader) {
		ld.inputFile = path
	}
}

// WithDefaultSeason sets the season used when neither a season tag nor a
// parseable game date is present.
func WithDefaultSeason(season string) Option {
	return func(ld *Loader) {
		if season != "" {
			ld.defaultSeason = season
		}
	}
}

// WithNameCorrections adds spelling corrections to the built-in table.
func WithNameCorrections(c map[string]string) Option {
	return func(ld *Loader) {
		ld.names = NewNames(c)
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// New constructs a Loader with configuration options.
func New(opts ...Option) *Loader {
	l := &Loader{
		layout:        LayoutUnified,
		dataDir:       defaultDataDir,
		defaultSeason: DefaultSeason,
		names:         NewNames(nil),
		logger:        logger.Discard(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// normalizedPath is the file read by the normalized layout.
func (l *Loader) normalizedPath() string {
	if l.inputFile != "" {
		return l.inputFile
	}
	return filepath.Join(l.dataDir, NormalizedFile)
}

// Load reads the configured input and returns its games sorted by id.
func (l *Loader) Load(ctx context.Context) ([]model.Game, Stats, error) {
	iss := &issues{}

	var (
		src sources
		err error
	)
	switch l.layout {
	case LayoutNormalized:
		src, err = l.readNormalized(ctx, iss)
	case LayoutUnified:
		src, err = l.readUnified(ctx, iss)
	default:
		err = fmt.Errorf("%q: %w", l.layout, ErrUnknownLayout)
	}
	if err != nil {
		return nil, Stats{}, err
	}
	if len(src.rows) == 0 {
		return nil, Stats{}, fmt.Errorf("%s layout has no box score rows: %w", l.layout, ErrNoInput)
	}

	dd := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(len(src.rows)))
	games := assemble(src, dd)

	stats := Stats{
		Rows:       len(src.rows),
		Games:      len(games),
		Duplicates: int(dd.Dropped()),
		Malformed:  iss.count,
		Issues:     iss.samples,
	}

	l.logger.Info(ctx, "input loaded",
		logger.String("layout", string(l.layout)),
		logger.Int("rows", stats.Rows),
		logger.Int("games", stats.Games),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("malformed", stats.Malformed),
	)
	for _, e := range stats.Issues {
		l.logger.Debug(ctx, "malformed field replaced by default", logger.Error(e))
	}
	return games, stats, nil
}
