// Package priors holds the static starting ratings used both at first
// reference and as the anchor for season regression.
package priors

import "github.com/okian/foresight/internal/domain/model"

// Default ratings for entities that have no table entry.
const (
	DefaultTeamRating   = 1500.0
	DefaultPlayerRating = 1500.0
)

// Table resolves the prior rating of an entity.
type Table struct {
	teams         map[string]float64
	players       map[string]float64
	defaultTeam   float64
	defaultPlayer float64
}

// Option applies a configuration option to the Table.
type Option func(*Table)

// WithTeamPriors overlays the given team ratings on top of the defaults.
func WithTeamPriors(m map[string]float64) Option {
	return func(t *Table) {
		for id, r := range m {
			t.teams[id] = r
		}
	}
}

// WithPlayerPriors overlays the given player ratings on top of the defaults.
func WithPlayerPriors(m map[string]float64) Option {
	return func(t *Table) {
		for id, r := range m {
			t.players[id] = r
		}
	}
}

// WithDefaults sets the fallback ratings for unknown teams and players.
func WithDefaults(team, player float64) Option {
	return func(t *Table) {
		if team > 0 {
			t.defaultTeam = team
		}
		if player > 0 {
			t.defaultPlayer = player
		}
	}
}

// WithoutBuiltins drops the built-in league tables so only explicitly
// supplied priors apply.
func WithoutBuiltins() Option {
	return func(t *Table) {
		t.teams = make(map[string]float64)
		t.players = make(map[string]float64)
	}
}

// New builds a Table seeded with the built-in league priors.
func New(opts ...Option) *Table {
	t := &Table{
		teams:         copyMap(teamPriors),
		players:       copyMap(playerPriors),
		defaultTeam:   DefaultTeamRating,
		defaultPlayer: DefaultPlayerRating,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Prior returns the prior for id of the given kind and whether it came from
// the table (false means the default was used).
func (t *Table) Prior(kind model.Kind, id string) (float64, bool) {
	switch kind {
	case model.KindTeam:
		if r, ok := t.teams[id]; ok {
			return r, true
		}
		return t.defaultTeam, false
	default:
		if r, ok := t.players[id]; ok {
			return r, true
		}
		return t.defaultPlayer, false
	}
}

func copyMap(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var teamPriors = map[string]float64{
	"BOS": 1600, "DEN": 1600, "OKC": 1580, "MIN": 1580, "MIL": 1590,
	"PHI": 1580, "LAC": 1570, "NYK": 1570, "DAL": 1570, "PHO": 1560,
	"CLE": 1550, "ORL": 1540, "IND": 1540, "LAL": 1530, "GSW": 1520,
	"SAC": 1520, "MIA": 1520, "NOP": 1510, "ATL": 1500, "CHI": 1500,
	"SAS": 1510, "HOU": 1490, "MEM": 1490, "UTA": 1480, "BRK": 1480,
	"TOR": 1470, "POR": 1460, "CHO": 1450, "DET": 1440, "WAS": 1430,
}

var playerPriors = map[string]float64{
	"Nikola Jokic": 1850, "Giannis Antetokounmpo": 1820, "Luka Doncic": 1820,
	"Jayson Tatum": 1780, "Shai Gilgeous-Alexander": 1800, "Joel Embiid": 1780,
	"Anthony Edwards": 1760, "Stephen Curry": 1750, "Kevin Durant": 1750,
	"LeBron James": 1730, "Devin Booker": 1720, "Kawhi Leonard": 1720,
	"Damian Lillard": 1710, "Donovan Mitchell": 1710, "Anthony Davis": 1720,
	"Victor Wembanyama": 1750,
	"Ja Morant": 1700, "Zion Williamson": 1670, "Paolo Banchero": 1680,
	"Chet Holmgren": 1680, "Jaren Jackson Jr.": 1670, "Jaylen Brown": 1680,
	"Bam Adebayo": 1660, "Domantas Sabonis": 1660, "DeAaron Fox": 1660,
	"Kyrie Irving": 1700, "James Harden": 1690, "Karl-Anthony Towns": 1680,
	"Trae Young": 1690, "Jalen Brunson": 1690, "Tyrese Haliburton": 1720,
}
