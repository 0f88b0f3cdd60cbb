package config

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/foresight/internal/adapters/loader"
	"github.com/okian/foresight/pkg/logger"
)

// Environment conventions.
const (
	EnvPrefix     = "FORESIGHT_"
	EnvConfigFile = "FORESIGHT_CONFIG"

	// keyDelim separates nested koanf keys. Player names carry dots.
	keyDelim = "::"
)

// listKeys are split on commas when they come from the environment.
var listKeys = []string{"watch_teams", "watch_players"} //nolint:gochecknoglobals // key set

// Supported relational sink drivers.
const (
	SinkNone     = ""
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FORESIGHT_CONFIG is set
//  3. env (prefix FORESIGHT_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(keyDelim)

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// FORESIGHT_TEAM_K -> team_k. Underscores are kept to match the flat
	// koanf tags on the struct.
	envProvider := env.ProviderWithValue(EnvPrefix, keyDelim, func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if key == "config" {
			return "", nil
		}
		if slices.Contains(listKeys, key) {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	invalid := func(key string, v any, want string) error {
		return fmt.Errorf("%w: %s=%v: %s", ErrInvalidConfig, key, v, want)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level", c.LogLevel, "want debug, info, warn or error")
	}
	if _, err := loader.ParseLayout(c.InputLayout); err != nil {
		return invalid("input_layout", c.InputLayout, "want normalized or unified")
	}

	switch {
	case c.DataDir == "":
		return invalid("data_dir", c.DataDir, "must not be empty")
	case c.OutputDir == "":
		return invalid("output_dir", c.OutputDir, "must not be empty")
	case c.TeamK <= 0:
		return invalid("team_k", c.TeamK, "must be positive")
	case c.PlayerK <= 0:
		return invalid("player_k", c.PlayerK, "must be positive")
	case c.SeasonRegression < 0 || c.SeasonRegression > 1:
		return invalid("season_regression", c.SeasonRegression, "must be within [0, 1]")
	case c.MinMinutes < 0:
		return invalid("min_minutes", c.MinMinutes, "must not be negative")
	case c.ImpactCap <= 0:
		return invalid("impact_cap", c.ImpactCap, "must be positive")
	case c.MinutesExponent <= 0:
		return invalid("minutes_exponent", c.MinutesExponent, "must be positive")
	case c.OpponentBaseline <= 0:
		return invalid("opponent_baseline", c.OpponentBaseline, "must be positive")
	case c.PlayerRatingMin >= c.PlayerRatingMax:
		return invalid("player_rating_min", c.PlayerRatingMin, "must be below player_rating_max")
	case c.DefaultTeamRating <= 0:
		return invalid("default_team_rating", c.DefaultTeamRating, "must be positive")
	case c.DefaultPlayerRating <= 0:
		return invalid("default_player_rating", c.DefaultPlayerRating, "must be positive")
	case c.TopN <= 0:
		return invalid("top_n", c.TopN, "must be positive")
	case c.ProgressEvery < 0:
		return invalid("progress_every", c.ProgressEvery, "must not be negative")
	}

	switch c.SinkDriver {
	case SinkNone:
	case SinkSQLite, SinkPostgres:
		if c.SinkDSN == "" {
			return invalid("sink_dsn", c.SinkDSN, "required with sink_driver "+c.SinkDriver)
		}
	default:
		return invalid("sink_driver", c.SinkDriver, "want sqlite or postgres")
	}
	return nil
}
