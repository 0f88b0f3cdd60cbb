// Package config defines run configuration structures and loading hooks.
//
// Conventions:
// - Every tuning constant of the rating model is a named key here.
// - New() returns the defaults; Load(ctx) layers a YAML file and env vars.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"github.com/okian/foresight/internal/adapters/loader"
	"github.com/okian/foresight/internal/domain/impact"
	"github.com/okian/foresight/internal/domain/margin"
	"github.com/okian/foresight/internal/domain/priors"
	"github.com/okian/foresight/internal/domain/scoring"
	"github.com/okian/foresight/internal/domain/season"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile is appended to in addition to the console. Empty means
	// <output_dir>/logs/elo_calculation.log.
	LogFile string `koanf:"log_file"`

	// DataDir holds the unified layout's files.
	DataDir string `koanf:"data_dir"`

	// OutputDir receives results/, history/ and logs/.
	OutputDir string `koanf:"output_dir"`

	// InputLayout is normalized or unified.
	InputLayout string `koanf:"input_layout"`

	// InputFile is the normalized layout's CSV. Empty means
	// <data_dir>/boxscores.csv.
	InputFile string `koanf:"input_file"`

	// DefaultSeason is used when a row has neither a season nor a date.
	DefaultSeason string `koanf:"default_season"`

	// Team model.
	HomeAdvantage      float64 `koanf:"home_advantage"`
	TeamK              float64 `koanf:"team_k"`
	SeasonRegression   float64 `koanf:"season_regression"`
	MarginActualWeight float64 `koanf:"margin_actual_weight"`
	MarginFactorWeight float64 `koanf:"margin_factor_weight"`
	EFGWeight          float64 `koanf:"efg_weight"`
	TOVWeight          float64 `koanf:"tov_weight"`
	ORBWeight          float64 `koanf:"orb_weight"`
	FTRWeight          float64 `koanf:"ftr_weight"`

	// Player model.
	PlayerK          float64 `koanf:"player_k"`
	MinMinutes       float64 `koanf:"min_minutes"`
	ImpactPMWeight   float64 `koanf:"impact_pm_weight"`
	ImpactBPMWeight  float64 `koanf:"impact_bpm_weight"`
	ImpactCap        float64 `koanf:"impact_cap"`
	MinutesExponent  float64 `koanf:"minutes_exponent"`
	OpponentBaseline float64 `koanf:"opponent_baseline"`
	PlayerRatingMin  float64 `koanf:"player_rating_min"`
	PlayerRatingMax  float64 `koanf:"player_rating_max"`

	// Priors. The maps extend or override the built-in tables.
	DefaultTeamRating   float64            `koanf:"default_team_rating"`
	DefaultPlayerRating float64            `koanf:"default_player_rating"`
	TeamPriors          map[string]float64 `koanf:"team_priors"`
	PlayerPriors        map[string]float64 `koanf:"player_priors"`

	// NameCorrections maps raw player spellings to canonical names.
	NameCorrections map[string]string `koanf:"name_corrections"`

	// TopN sizes the top players export.
	TopN int `koanf:"top_n"`

	// ProgressEvery logs progress every that many games; 0 disables it.
	ProgressEvery int `koanf:"progress_every"`

	// Preseed registers every entity at its prior before the first game.
	Preseed bool `koanf:"preseed"`

	// WatchTeams and WatchPlayers are reported in the run summary log.
	WatchTeams   []string `koanf:"watch_teams"`
	WatchPlayers []string `koanf:"watch_players"`

	// SinkDriver selects the optional relational sink: "", sqlite or postgres.
	SinkDriver string `koanf:"sink_driver"`
	SinkDSN    string `koanf:"sink_dsn"`

	// MetricsTextfile receives the metrics registry at the end of a run.
	MetricsTextfile string `koanf:"metrics_textfile"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		DataDir:       "data",
		OutputDir:     ".",
		InputLayout:   string(loader.LayoutUnified),
		DefaultSeason: loader.DefaultSeason,

		HomeAdvantage:      scoring.DefaultHomeAdvantage,
		TeamK:              scoring.DefaultK,
		SeasonRegression:   season.DefaultRegression,
		MarginActualWeight: scoring.DefaultActualMarginWeight,
		MarginFactorWeight: scoring.DefaultFactorMarginWeight,
		EFGWeight:          margin.DefaultWeights.EFG,
		TOVWeight:          margin.DefaultWeights.TOV,
		ORBWeight:          margin.DefaultWeights.ORB,
		FTRWeight:          margin.DefaultWeights.FTR,

		PlayerK:          impact.DefaultK,
		MinMinutes:       impact.DefaultMinMinutes,
		ImpactPMWeight:   impact.DefaultPlusMinusWeight,
		ImpactBPMWeight:  impact.DefaultBPMWeight,
		ImpactCap:        impact.DefaultCap,
		MinutesExponent:  impact.DefaultMinutesExponent,
		OpponentBaseline: impact.DefaultOpponentBaseline,
		PlayerRatingMin:  impact.DefaultFloor,
		PlayerRatingMax:  impact.DefaultCeiling,

		DefaultTeamRating:   priors.DefaultTeamRating,
		DefaultPlayerRating: priors.DefaultPlayerRating,

		TopN:          20,
		ProgressEvery: 500,
		Preseed:       true,
		WatchTeams:    []string{"SAS"},
		WatchPlayers: []string{
			"Victor Wembanyama", "Nikola Jokic", "Giannis Antetokounmpo",
			"LeBron James", "Stephen Curry", "Anthony Davis",
		},
	}
}
