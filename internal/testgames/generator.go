package testgames

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/okian/foresight/internal/domain/model"
)

// Constants for league generation.
const (
	starters       = 5
	seedMix        = 0x9e3779b97f4a7c15
	strengthSpread = 5.0
	skillSpread    = 2.0
	seasonDays     = 180

	basePoints  = 112.0
	totalNoise  = 8.0
	homeEdge    = 3.0
	marginNoise = 11.0

	starterMinSecs   = 28 * 60
	starterRangeSecs = 10 * 60
	benchMinSecs     = 3 * 60
	benchRangeSecs   = 19 * 60
	thirdTeamSecs    = 12 * 60
	minutesPerGame   = 48.0
)

// teamCodes are the league codes handed out in order.
var teamCodes = []string{ //nolint:gochecknoglobals // fixed code table
	"BOS", "DEN", "OKC", "MIN", "MIL", "PHI", "LAC", "NYK", "DAL", "PHO",
	"CLE", "ORL", "IND", "LAL", "GSW", "SAC", "MIA", "NOP", "ATL", "CHI",
	"SAS", "HOU", "MEM", "UTA", "BRK", "TOR", "POR", "CHO", "DET", "WAS",
}

type player struct {
	name  string
	skill float64
}

type roster struct {
	team     string
	strength float64
	players  []player
}

// Generate builds a league and returns its games in increasing id order.
// The output depends only on cfg.
func Generate(cfg Config) []model.Game {
	cfg = cfg.normalized()
	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^seedMix)) //nolint:gosec // deterministic test data

	teams := make([]roster, cfg.Teams)
	for i := range teams {
		teams[i] = roster{
			team:     teamCodes[i],
			strength: r.NormFloat64() * strengthSpread,
			players:  make([]player, cfg.RosterSize),
		}
		for j := range teams[i].players {
			teams[i].players[j] = player{
				name:  fmt.Sprintf("%s Player %02d", teamCodes[i], j+1),
				skill: r.NormFloat64() * skillSpread,
			}
		}
	}

	games := make([]model.Game, 0, cfg.Seasons*cfg.GamesPerSeason)
	n := 0
	for s := 0; s < cfg.Seasons; s++ {
		year := cfg.FirstSeason + s
		opening := time.Date(year, time.October, 20, 0, 0, 0, 0, time.UTC)
		for k := 0; k < cfg.GamesPerSeason; k++ {
			n++
			hi := r.IntN(cfg.Teams)
			ai := r.IntN(cfg.Teams - 1)
			if ai >= hi {
				ai++
			}

			g := play(r, teams[hi], teams[ai])
			g.ID = fmt.Sprintf("%04d%06d", year, k+1)
			g.Season = strconv.Itoa(year)
			g.Date = opening.AddDate(0, 0, k*seasonDays/cfg.GamesPerSeason).Format(time.DateOnly)
			for i := range g.Players {
				g.Players[i].GameID = g.ID
			}

			switch {
			case cfg.DegenerateEvery > 0 && n%cfg.DegenerateEvery == 0:
				third := teams[thirdIndex(cfg.Teams, hi, ai)]
				g.Teams = append(g.Teams, third.team)
				g.Players = append(g.Players, model.PlayerGameStat{
					PlayerID: third.players[0].name,
					TeamID:   third.team,
					GameID:   g.ID,
					Minutes:  float64(thirdTeamSecs) / 60,
				})
			case cfg.UnresolvableEvery > 0 && n%cfg.UnresolvableEvery == 0:
				g.HomePoints = nil
				for i := range g.Players {
					if g.Players[i].TeamID == g.Home {
						g.Players[i].Points = 0
					}
				}
			}
			games = append(games, g)
		}
	}
	return games
}

func thirdIndex(teams, hi, ai int) int {
	for i := 0; i < teams; i++ {
		if i != hi && i != ai {
			return i
		}
	}
	return hi
}

// play simulates one game between home and away.
func play(r *rand.Rand, home, away roster) model.Game {
	margin := math.Round(home.strength - away.strength + homeEdge + r.NormFloat64()*marginNoise)
	total := math.Round(2*basePoints + r.NormFloat64()*totalNoise)
	hp := math.Round((total + margin) / 2)
	ap := hp - margin

	g := model.Game{
		Home:        home.team,
		Away:        away.team,
		HomePoints:  model.Float(hp),
		AwayPoints:  model.Float(ap),
		HomeFactors: factors(r, margin),
		AwayFactors: factors(r, -margin),
		Teams:       []string{home.team, away.team},
	}
	g.Players = append(g.Players, box(r, home, hp, margin)...)
	g.Players = append(g.Players, box(r, away, ap, -margin)...)
	return g
}

// box distributes a team's points over its roster by minutes played.
func box(r *rand.Rand, t roster, points, margin float64) []model.PlayerGameStat {
	rows := make([]model.PlayerGameStat, len(t.players))
	weights := make([]float64, len(t.players))
	sum := 0.0
	for i, p := range t.players {
		secs := benchMinSecs + r.IntN(benchRangeSecs)
		if i < starters {
			secs = starterMinSecs + r.IntN(starterRangeSecs)
		}
		minutes := float64(secs) / 60
		rows[i] = model.PlayerGameStat{
			PlayerID:  p.name,
			TeamID:    t.team,
			Minutes:   minutes,
			PlusMinus: math.Round(margin*minutes/minutesPerGame + r.NormFloat64()*4),
			BPM:       math.Round((p.skill+r.NormFloat64()*3)*10) / 10,
		}
		weights[i] = minutes * math.Max(0.2, 1+0.1*p.skill)
		sum += weights[i]
	}

	given := 0.0
	for i := range rows {
		rows[i].Points = math.Floor(points * weights[i] / sum)
		given += rows[i].Points
	}
	rows[0].Points += points - given
	return rows
}

func factors(r *rand.Rand, margin float64) model.FourFactors {
	return model.FourFactors{
		EFG:  model.Float(round(0.53+0.0015*margin+r.NormFloat64()*0.03, 3)),
		TOV:  model.Float(round(0.13-0.0005*margin+r.NormFloat64()*0.02, 3)),
		ORB:  model.Float(round(0.25+r.NormFloat64()*0.04, 3)),
		FTR:  model.Float(round(0.2+r.NormFloat64()*0.03, 3)),
		Pace: model.Float(round(99+r.NormFloat64()*3, 1)),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
