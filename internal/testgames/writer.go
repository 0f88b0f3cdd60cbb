package testgames

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/okian/foresight/internal/domain/model"
)

// header is the single-file box score layout, one row per player per game.
var header = []string{ //nolint:gochecknoglobals // column layout
	"game_id", "season", "game_date", "home_team", "away_team", "team", "player",
	"points", "minutes", "plus_minus", "bpm",
	"efg_pct", "tov_pct", "orb_pct", "ft_rate", "pace",
}

// WriteCSV writes games as player rows. Minutes are written as MM:SS and a
// team whose points are unknown gets empty points fields.
func WriteCSV(w io.Writer, games []model.Game) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, g := range games {
		for _, p := range g.Players {
			f, known := teamLine(g, p.TeamID)
			points := ""
			if known {
				points = num(p.Points)
			}
			rec := []string{
				g.ID, g.Season, g.Date, g.Home, g.Away, p.TeamID, p.PlayerID,
				points, clock(p.Minutes), num(p.PlusMinus), num(p.BPM),
				opt(f.EFG), opt(f.TOV), opt(f.ORB), opt(f.FTR), opt(f.Pace),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("write game %s: %w", g.ID, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// teamLine returns the four factors of team and whether its points are known.
func teamLine(g model.Game, team string) (model.FourFactors, bool) {
	switch team {
	case g.Home:
		return g.HomeFactors, g.HomePoints != nil
	case g.Away:
		return g.AwayFactors, g.AwayPoints != nil
	default:
		return model.FourFactors{}, true
	}
}

func clock(minutes float64) string {
	secs := int(math.Round(minutes * 60))
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func opt(v *float64) string {
	if v == nil {
		return ""
	}
	return num(*v)
}
