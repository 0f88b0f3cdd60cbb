package engine_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/foresight/internal/adapters/history"
	"github.com/okian/foresight/internal/adapters/repository"
	"github.com/okian/foresight/internal/domain/engine"
	"github.com/okian/foresight/internal/domain/impact"
	"github.com/okian/foresight/internal/domain/model"
	"github.com/okian/foresight/internal/domain/priors"
	"github.com/okian/foresight/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func flatStore() *repository.MemoryStore {
	return repository.NewMemoryStore(repository.WithPriors(priors.New(priors.WithoutBuiltins())))
}

func twoTeamGame(id, season, home, away string, hp, ap float64) model.Game {
	return model.Game{
		ID:         id,
		Season:     season,
		Home:       home,
		Away:       away,
		HomePoints: model.Float(hp),
		AwayPoints: model.Float(ap),
		Teams:      []string{home, away},
	}
}

// panicStore fails while a game is being staged.
type panicStore struct {
	repository.Store
	on string
}

func (s panicStore) Peek(kind model.Kind, id string) float64 {
	if id == s.on {
		panic("corrupt rating for " + id)
	}
	return s.Store.Peek(kind, id)
}

func TestProcessor_EndToEnd(t *testing.T) {
	Convey("Given two teams at 1500 and a home win by 10 with no four factors", t, func() {
		store := flatStore()
		rec := history.NewRecorder(0)
		p := engine.New(store, rec)

		g := twoTeamGame("0001", "2023", "BOS", "LAL", 110, 100)
		g.Players = []model.PlayerGameStat{
			{PlayerID: "Home Star", TeamID: "BOS", GameID: "0001", Minutes: 30, Points: 60, PlusMinus: 10, BPM: 2},
			{PlayerID: "Home Bench", TeamID: "BOS", GameID: "0001", Minutes: 6, Points: 50},
			{PlayerID: "Away Star", TeamID: "LAL", GameID: "0001", Minutes: 30, Points: 100, PlusMinus: -10, BPM: -2},
		}

		err := p.Process(context.Background(), g)

		Convey("Then the teams land on 1511.97 and 1488.03", func() {
			So(err, ShouldBeNil)
			So(store.Rating(model.KindTeam, "BOS"), ShouldAlmostEqual, 1511.97, 0.01)
			So(store.Rating(model.KindTeam, "LAL"), ShouldAlmostEqual, 1488.03, 0.01)
		})

		Convey("Then the deltas are additive inverses", func() {
			sum := store.Rating(model.KindTeam, "BOS") + store.Rating(model.KindTeam, "LAL")
			So(sum, ShouldAlmostEqual, 3000.0, 1e-9)
		})

		Convey("Then only qualifying players move", func() {
			want := 10 * math.Pow(0.5, 0.7) / math.Sqrt2
			So(store.Rating(model.KindPlayer, "Home Star"), ShouldAlmostEqual, 1500+want, 1e-9)
			So(store.Rating(model.KindPlayer, "Away Star"), ShouldAlmostEqual, 1500-want, 1e-9)
			_, tracked := store.Lookup(model.KindPlayer, "Home Bench")
			So(tracked, ShouldBeFalse)
		})

		Convey("Then history holds both teams home first and then players in row order", func() {
			all := rec.All()
			So(len(all), ShouldEqual, 4)
			So(all[0].EntityID, ShouldEqual, "BOS")
			So(all[1].EntityID, ShouldEqual, "LAL")
			So(all[2].EntityID, ShouldEqual, "Home Star")
			So(all[3].EntityID, ShouldEqual, "Away Star")
			So(all[0].Season, ShouldEqual, "2023")
			So(all[0].GameID, ShouldEqual, "0001")
		})
	})
}

func TestProcessor_EqualRatingsWithoutHomeAdvantage(t *testing.T) {
	Convey("Given equal ratings and no home advantage", t, func() {
		store := flatStore()
		p := engine.New(store, history.NewRecorder(0),
			engine.WithScorer(scoring.NewTeamScorer(scoring.WithHomeAdvantage(0))))

		Convey("When the game is tied", func() {
			err := p.Process(context.Background(), twoTeamGame("1", "2023", "BOS", "LAL", 99, 99))

			Convey("Then expectation 0.5 meets actual 0.5 and nobody moves", func() {
				So(err, ShouldBeNil)
				So(store.Rating(model.KindTeam, "BOS"), ShouldEqual, 1500.0)
				So(store.Rating(model.KindTeam, "LAL"), ShouldEqual, 1500.0)
			})
		})
	})
}

func TestProcessor_Skips(t *testing.T) {
	Convey("Given an empty store", t, func() {
		store := flatStore()
		rec := history.NewRecorder(0)
		p := engine.New(store, rec)

		Convey("When a game has rows for three teams", func() {
			g := twoTeamGame("1", "2023", "BOS", "LAL", 110, 100)
			g.Teams = append(g.Teams, "MIA")
			g.Players = []model.PlayerGameStat{{PlayerID: "x", TeamID: "MIA", Minutes: 30}}
			err := p.Process(context.Background(), g)

			Convey("Then it is skipped with no mutation and no history", func() {
				So(errors.Is(err, engine.ErrDegenerateGame), ShouldBeTrue)
				So(store.Count(model.KindTeam), ShouldEqual, 0)
				So(store.Count(model.KindPlayer), ShouldEqual, 0)
				So(rec.Len(), ShouldEqual, 0)
			})
		})

		Convey("When home and away are the same team", func() {
			err := p.Process(context.Background(), twoTeamGame("1", "2023", "BOS", "BOS", 110, 100))

			Convey("Then it is degenerate", func() {
				So(errors.Is(err, engine.ErrDegenerateGame), ShouldBeTrue)
			})
		})

		Convey("When a game has rows for only one team", func() {
			g := twoTeamGame("1", "2023", "BOS", "LAL", 110, 100)
			g.Teams = []string{"BOS"}
			err := p.Process(context.Background(), g)

			Convey("Then it is degenerate", func() {
				So(errors.Is(err, engine.ErrDegenerateGame), ShouldBeTrue)
			})
		})

		Convey("When one team's points are unknown", func() {
			g := twoTeamGame("1", "2023", "BOS", "LAL", 110, 100)
			g.AwayPoints = nil
			err := p.Process(context.Background(), g)

			Convey("Then the score is unresolvable and nothing changes", func() {
				So(errors.Is(err, engine.ErrUnresolvableScore), ShouldBeTrue)
				So(store.Count(model.KindTeam), ShouldEqual, 0)
				So(rec.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestProcessor_Rollback(t *testing.T) {
	Convey("Given a store with one game applied", t, func() {
		store := flatStore()
		rec := history.NewRecorder(0)
		p := engine.New(store, rec)
		So(p.Process(context.Background(), twoTeamGame("1", "2023", "BOS", "LAL", 110, 100)), ShouldBeNil)
		before := store.Entries(model.KindTeam)
		entries := rec.Len()

		Convey("When a game produces a non-finite delta", func() {
			g := twoTeamGame("2", "2023", "BOS", "LAL", math.Inf(1), 100)
			g.Players = []model.PlayerGameStat{{PlayerID: "new", TeamID: "BOS", Minutes: 30, PlusMinus: 5}}
			err := p.Process(context.Background(), g)

			Convey("Then it fails and the store is exactly as before", func() {
				So(errors.Is(err, engine.ErrGameFailed), ShouldBeTrue)
				So(store.Entries(model.KindTeam), ShouldResemble, before)
				So(store.Count(model.KindPlayer), ShouldEqual, 0)
				So(rec.Len(), ShouldEqual, entries)
			})
		})

		Convey("When staging panics", func() {
			faulty := engine.New(panicStore{Store: store, on: "Doomed"}, rec)
			g := twoTeamGame("2", "2023", "BOS", "LAL", 100, 90)
			g.Players = []model.PlayerGameStat{
				{PlayerID: "Fine", TeamID: "BOS", Minutes: 30, PlusMinus: 5},
				{PlayerID: "Doomed", TeamID: "LAL", Minutes: 30, PlusMinus: -5},
			}
			err := faulty.Process(context.Background(), g)

			Convey("Then the panic is recovered as a failure with no writes", func() {
				So(errors.Is(err, engine.ErrGameFailed), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "corrupt rating")
				So(store.Entries(model.KindTeam), ShouldResemble, before)
				So(store.Count(model.KindPlayer), ShouldEqual, 0)
				So(rec.Len(), ShouldEqual, entries)
			})
		})
	})
}

func TestProcessor_SeasonRegression(t *testing.T) {
	Convey("Given a game applied in 2023", t, func() {
		store := flatStore()
		p := engine.New(store, history.NewRecorder(0))
		So(p.Process(context.Background(), twoTeamGame("1", "2023", "BOS", "LAL", 110, 100)), ShouldBeNil)
		bos := store.Rating(model.KindTeam, "BOS")

		Convey("When the next game opens 2024 but is skipped", func() {
			skipped := twoTeamGame("2", "2024", "BOS", "LAL", 110, 100)
			skipped.Teams = append(skipped.Teams, "MIA")
			err := p.Process(context.Background(), skipped)

			Convey("Then ratings are regressed once before anything else", func() {
				So(errors.Is(err, engine.ErrDegenerateGame), ShouldBeTrue)
				So(store.Rating(model.KindTeam, "BOS"), ShouldAlmostEqual, 1500+(bos-1500)*0.75, 1e-9)
			})

			Convey("And another game of 2024 does not regress again", func() {
				again := twoTeamGame("3", "2024", "MIA", "DEN", 100, 100)
				_ = p.Process(context.Background(), again)
				So(store.Rating(model.KindTeam, "BOS"), ShouldAlmostEqual, 1500+(bos-1500)*0.75, 1e-9)
			})
		})
	})
}

func TestProcessor_PlayerBounds(t *testing.T) {
	Convey("Given an extreme player K-factor", t, func() {
		store := flatStore()
		p := engine.New(store, history.NewRecorder(0),
			engine.WithImpactModel(impact.New(impact.WithK(5000))))

		g := twoTeamGame("1", "2023", "BOS", "LAL", 120, 80)
		g.Players = []model.PlayerGameStat{
			{PlayerID: "a", TeamID: "BOS", Minutes: 40, PlusMinus: 30, BPM: 12},
			{PlayerID: "b", TeamID: "BOS", Minutes: 20, PlusMinus: 5, BPM: 1},
			{PlayerID: "c", TeamID: "LAL", Minutes: 40, PlusMinus: -30, BPM: -9},
		}

		Convey("When the game is applied", func() {
			So(p.Process(context.Background(), g), ShouldBeNil)

			Convey("Then every player stays within [1200, 2000]", func() {
				for _, e := range store.Entries(model.KindPlayer) {
					So(e.Rating, ShouldBeGreaterThanOrEqualTo, 1200.0)
					So(e.Rating, ShouldBeLessThanOrEqualTo, 2000.0)
				}
				So(store.Rating(model.KindPlayer, "a"), ShouldEqual, 2000.0)
				So(store.Rating(model.KindPlayer, "c"), ShouldEqual, 1200.0)
			})
		})
	})
}

func TestProcessor_OrderSensitivity(t *testing.T) {
	Convey("Given two games between the same teams", t, func() {
		g1 := twoTeamGame("1", "2023", "BOS", "LAL", 110, 100)
		g2 := twoTeamGame("2", "2023", "LAL", "BOS", 110, 100)

		fold := func(games ...model.Game) float64 {
			store := flatStore()
			p := engine.New(store, history.NewRecorder(0))
			for _, g := range games {
				So(p.Process(context.Background(), g), ShouldBeNil)
			}
			return store.Rating(model.KindTeam, "BOS")
		}

		Convey("Then swapping their order changes the result", func() {
			So(fold(g1, g2), ShouldNotAlmostEqual, fold(g2, g1), 0.5)
		})
	})
}
