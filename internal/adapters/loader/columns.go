package loader

import (
	"fmt"
	"strings"
)

// Logical column names.
const (
	colGameID    = "game_id"
	colSeason    = "season"
	colDate      = "game_date"
	colHome      = "home_team"
	colAway      = "away_team"
	colTeam      = "team"
	colPlayer    = "player"
	colPoints    = "points"
	colMinutes   = "minutes"
	colPlusMinus = "plus_minus"
	colBPM       = "bpm"
	colEFG       = "efg_pct"
	colTOV       = "tov_pct"
	colORB       = "orb_pct"
	colFTR       = "ft_rate"
	colPace      = "pace"
)

// aliases lists the accepted header spellings per logical column, most
// preferred first.
var aliases = map[string][]string{ //nolint:gochecknoglobals // lookup table
	colGameID:    {"game_id", "GAME_ID", "gameId"},
	colSeason:    {"season", "SEASON"},
	colDate:      {"game_date", "date", "GAME_DATE"},
	colHome:      {"home_team", "home"},
	colAway:      {"away_team", "away"},
	colTeam:      {"team", "team_abbreviation", "TEAM"},
	colPlayer:    {"player", "player_name", "PLAYER"},
	colPoints:    {"pts", "points", "PTS", "Points"},
	colMinutes:   {"mp", "minutes", "MP", "min", "MIN"},
	colPlusMinus: {"plus_minus", "pm", "+/-"},
	colBPM:       {"bpm", "BPM"},
	colEFG:       {"efg_pct", "eFG%"},
	colTOV:       {"tov_pct", "TOV%"},
	colORB:       {"orb_pct", "ORB%"},
	colFTR:       {"ft_rate", "FT/FGA", "ftr"},
	colPace:      {"pace", "Pace"},
}

// header maps logical columns to their position in one file.
type header struct {
	file string
	pos  map[string]int
}

// newHeader resolves every known logical column present in rec. Exact
// spellings win over case-insensitive matches.
func newHeader(file string, rec []string) header {
	exact := make(map[string]int, len(rec))
	folded := make(map[string]int, len(rec))
	for i, name := range rec {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := exact[name]; !dup {
			exact[name] = i
		}
		if _, dup := folded[strings.ToLower(name)]; !dup {
			folded[strings.ToLower(name)] = i
		}
	}

	h := header{file: file, pos: make(map[string]int, len(aliases))}
	for col, names := range aliases {
		if i, ok := lookup(exact, names, false); ok {
			h.pos[col] = i
		} else if i, ok := lookup(folded, names, true); ok {
			h.pos[col] = i
		}
	}
	return h
}

func lookup(idx map[string]int, names []string, fold bool) (int, bool) {
	for _, n := range names {
		if fold {
			n = strings.ToLower(n)
		}
		if i, ok := idx[n]; ok {
			return i, true
		}
	}
	return 0, false
}

// has reports whether col is present.
func (h header) has(col string) bool {
	_, ok := h.pos[col]
	return ok
}

// require fails with ErrMissingColumn for the first absent column.
func (h header) require(cols ...string) error {
	for _, c := range cols {
		if !h.has(c) {
			return fmt.Errorf("%s: %q (accepted: %s): %w",
				h.file, c, strings.Join(aliases[c], ", "), ErrMissingColumn)
		}
	}
	return nil
}

// get returns the trimmed value of col in rec, or "" if absent.
func (h header) get(rec []string, col string) string {
	i, ok := h.pos[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
