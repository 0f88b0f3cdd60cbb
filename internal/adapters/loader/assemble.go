package loader

import (
	"slices"
	"strconv"

	"github.com/okian/foresight/internal/domain/dedupe"
	"github.com/okian/foresight/internal/domain/model"
	"github.com/okian/foresight/pkg/metrics"
)

// Stand-ins for the player of a team-total row and of a row with no player
// name in dedupe keys. Unnamed rows are keyed by their line.
const (
	totalKey   = "\x00total"
	unnamedKey = "\x00line:"
)

// gameAcc accumulates one game's rows.
type gameAcc struct {
	game   model.Game
	teams  map[string]struct{}
	totals map[string]float64 // points from team-total rows
	sums   map[string]float64 // points summed over player rows
	scored map[string]bool    // at least one player row had parseable points
}

func newGameAcc(r boxRow) *gameAcc {
	return &gameAcc{
		game: model.Game{
			ID:     r.gameID,
			Season: r.season,
			Date:   r.date,
			Home:   r.home,
			Away:   r.away,
		},
		teams:  make(map[string]struct{}, 2),
		totals: make(map[string]float64, 2),
		sums:   make(map[string]float64, 2),
		scored: make(map[string]bool, 2),
	}
}

// points resolves a team's total: a team-total row wins over the player sum,
// and a team with neither is unknown.
func (a *gameAcc) points(team string) *float64 {
	if v, ok := a.totals[team]; ok {
		return model.Float(v)
	}
	if a.scored[team] {
		return model.Float(a.sums[team])
	}
	return nil
}

// factorAcc averages the four-factor lines reported for one (game, team).
type factorAcc struct {
	sum   [5]float64
	count [5]int
}

func (f *factorAcc) add(r factorRow) {
	for i, v := range []*float64{r.efg, r.tov, r.orb, r.ftr, r.pace} {
		if v != nil {
			f.sum[i] += *v
			f.count[i]++
		}
	}
}

func (f *factorAcc) mean(i int) *float64 {
	if f == nil || f.count[i] == 0 {
		return nil
	}
	return model.Float(f.sum[i] / float64(f.count[i]))
}

func (f *factorAcc) line() model.FourFactors {
	return model.FourFactors{EFG: f.mean(0), TOV: f.mean(1), ORB: f.mean(2), FTR: f.mean(3), Pace: f.mean(4)}
}

// assemble groups rows into games. Rows keep their file order within a game
// and the result is sorted by model.IDOrder.
func assemble(src sources, dd dedupe.Deduper) []model.Game {
	accs := make(map[string]*gameAcc)
	order := make([]string, 0)

	for _, r := range src.rows {
		player := r.player
		switch {
		case r.total:
			player = totalKey
		case r.unnamed:
			player = unnamedKey + strconv.Itoa(r.line)
		}
		if dd.SeenAndRecord(dedupe.RowKey(r.gameID, r.team, player)) {
			metrics.RecordDuplicateRow()
			continue
		}

		acc, ok := accs[r.gameID]
		if !ok {
			acc = newGameAcc(r)
			accs[r.gameID] = acc
			order = append(order, r.gameID)
		}
		if _, seen := acc.teams[r.team]; !seen {
			acc.teams[r.team] = struct{}{}
			acc.game.Teams = append(acc.game.Teams, r.team)
		}

		if r.total {
			if r.points != nil {
				acc.totals[r.team] = *r.points
			}
			continue
		}
		if r.unnamed {
			if r.points != nil {
				acc.sums[r.team] += *r.points
				acc.scored[r.team] = true
			}
			continue
		}

		stat := model.PlayerGameStat{
			PlayerID:  r.player,
			TeamID:    r.team,
			GameID:    r.gameID,
			Minutes:   r.minutes,
			PlusMinus: r.plusMinus,
			BPM:       r.bpm,
		}
		if r.points != nil {
			stat.Points = *r.points
			acc.sums[r.team] += *r.points
			acc.scored[r.team] = true
		}
		acc.game.Players = append(acc.game.Players, stat)
	}

	factors := make(map[string]*factorAcc)
	for _, f := range src.factors {
		key := dedupe.RowKey(f.gameID, f.team, "")
		fa, ok := factors[key]
		if !ok {
			fa = &factorAcc{}
			factors[key] = fa
		}
		fa.add(f)
	}

	games := make([]model.Game, 0, len(order))
	for _, id := range order {
		acc := accs[id]
		g := acc.game
		g.HomePoints = acc.points(g.Home)
		g.AwayPoints = acc.points(g.Away)
		g.HomeFactors = factors[dedupe.RowKey(id, g.Home, "")].line()
		g.AwayFactors = factors[dedupe.RowKey(id, g.Away, "")].line()
		games = append(games, g)
	}

	byID := model.IDOrder(games)
	slices.SortStableFunc(games, func(a, b model.Game) int { return byID(a.ID, b.ID) })
	return games
}
