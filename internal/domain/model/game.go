// Package model contains domain models passed between layers.
package model

import (
	"cmp"
	"strconv"
	"strings"
)

// Kind namespaces rated entities so a team code and a player name never alias.
type Kind string

// Entity kinds.
const (
	KindTeam   Kind = "team"
	KindPlayer Kind = "player"
)

// FourFactors is one team's efficiency line for a game. A nil field means the
// value was missing or unparseable upstream.
type FourFactors struct {
	EFG  *float64 // effective field goal percentage
	TOV  *float64 // turnover percentage
	ORB  *float64 // offensive rebound percentage
	FTR  *float64 // free throws per field goal attempt
	Pace *float64 // possessions per 48 minutes
}

// PlayerGameStat is a single player's box line for one game.
type PlayerGameStat struct {
	PlayerID  string
	TeamID    string
	GameID    string
	Minutes   float64
	Points    float64
	PlusMinus float64
	BPM       float64
}

// Game is one fully materialized game as handed to the engine.
type Game struct {
	ID     string // also the order key; see IDOrder
	Season string
	Date   string // yyyy-mm-dd, informational
	Home   string
	Away   string

	// Point totals; nil when no points could be resolved for the team.
	HomePoints *float64
	AwayPoints *float64

	HomeFactors FourFactors
	AwayFactors FourFactors

	// Teams lists every distinct team code seen on the game's rows, in
	// first-seen order.
	Teams   []string
	Players []PlayerGameStat
}

// HistoryEntry is one rating observation appended after a game.
type HistoryEntry struct {
	GameID   string
	EntityID string
	Kind     Kind
	Rating   float64
	Season   string
}

// Float returns a pointer to v. Handy for building games in code.
func Float(v float64) *float64 { return &v }

// IDOrder returns the comparison that sequences games by id. When every id
// is an integer they compare numerically, so "9" precedes "10"; otherwise
// they compare as strings. Numerically equal ids fall back to the string
// form.
func IDOrder(games []Game) func(a, b string) int {
	nums := make(map[string]int64, len(games))
	for _, g := range games {
		n, err := strconv.ParseInt(g.ID, 10, 64)
		if err != nil {
			return strings.Compare
		}
		nums[g.ID] = n
	}
	return func(a, b string) int {
		if c := cmp.Compare(nums[a], nums[b]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	}
}
