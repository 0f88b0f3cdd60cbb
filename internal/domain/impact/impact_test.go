package impact_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/okian/foresight/internal/domain/impact"
	"github.com/okian/foresight/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func flat(rating float64) impact.OpponentRating {
	return func(string) float64 { return rating }
}

func TestZScores(t *testing.T) {
	Convey("Given a cohort metric", t, func() {
		Convey("When values vary", func() {
			z := impact.ZScores([]float64{1, 2, 3})

			Convey("Then scores use the sample deviation", func() {
				So(z[0], ShouldAlmostEqual, -1.0, 1e-12)
				So(z[1], ShouldAlmostEqual, 0.0, 1e-12)
				So(z[2], ShouldAlmostEqual, 1.0, 1e-12)
			})
		})

		Convey("When the cohort is homogeneous", func() {
			Convey("Then every score is neutral", func() {
				So(impact.ZScores([]float64{0.1, 0.1, 0.1}), ShouldResemble, []float64{0, 0, 0})
			})
		})

		Convey("When the cohort has one member", func() {
			Convey("Then its score is neutral", func() {
				So(impact.ZScores([]float64{42}), ShouldResemble, []float64{0})
			})
		})
	})
}

func TestModel_Cap(t *testing.T) {
	Convey("Given the default model", t, func() {
		m := impact.New()

		Convey("Then a raw impact of 5.0 is clamped to 2.0", func() {
			So(m.Cap(5.0), ShouldEqual, 2.0)
			So(m.Cap(-5.0), ShouldEqual, -2.0)
			So(m.Cap(1.25), ShouldEqual, 1.25)
		})

		Convey("Then ratings are bounded to [1200, 2000]", func() {
			So(m.Clamp(2100), ShouldEqual, 2000.0)
			So(m.Clamp(1100), ShouldEqual, 1200.0)
			So(m.Clamp(1650), ShouldEqual, 1650.0)
		})
	})
}

func TestModel_Deltas(t *testing.T) {
	Convey("Given the default model", t, func() {
		m := impact.New()

		Convey("When nobody reaches the minutes threshold", func() {
			rows := []model.PlayerGameStat{
				{PlayerID: "a", TeamID: "H", Minutes: 9.9, PlusMinus: 10, BPM: 3},
				{PlayerID: "b", TeamID: "A", Minutes: 4, PlusMinus: -10, BPM: -3},
			}

			Convey("Then there are no updates", func() {
				So(m.Deltas(rows, flat(1500)), ShouldBeNil)
			})
		})

		Convey("When a single player qualifies", func() {
			rows := []model.PlayerGameStat{
				{PlayerID: "a", TeamID: "H", Minutes: 30, PlusMinus: 12, BPM: 5},
				{PlayerID: "b", TeamID: "A", Minutes: 3},
			}
			ups := m.Deltas(rows, flat(1500))

			Convey("Then its z-scores are neutral and it does not move", func() {
				So(len(ups), ShouldEqual, 1)
				So(ups[0].PlayerID, ShouldEqual, "a")
				So(ups[0].Impact, ShouldEqual, 0.0)
				So(ups[0].Weight, ShouldEqual, 1.0)
				So(ups[0].Delta, ShouldEqual, 0.0)
			})
		})

		Convey("When two players qualify", func() {
			rows := []model.PlayerGameStat{
				{PlayerID: "a", TeamID: "H", Minutes: 30, PlusMinus: 9, BPM: 4},
				{PlayerID: "b", TeamID: "A", Minutes: 20, PlusMinus: -6, BPM: -1},
			}
			ups := m.Deltas(rows, flat(1500))

			Convey("Then the better player gains and the weights are sub-linear", func() {
				So(len(ups), ShouldEqual, 2)
				// a two-member cohort always standardizes to ±1/sqrt(2)
				So(ups[0].Impact, ShouldAlmostEqual, 1/math.Sqrt2, 1e-12)
				So(ups[1].Impact, ShouldAlmostEqual, -1/math.Sqrt2, 1e-12)
				So(ups[0].Weight, ShouldAlmostEqual, math.Pow(0.6, 0.7), 1e-12)
				So(ups[1].Weight, ShouldAlmostEqual, math.Pow(0.4, 0.7), 1e-12)
				So(ups[0].Delta, ShouldAlmostEqual, 10*math.Pow(0.6, 0.7)/math.Sqrt2, 1e-12)
				So(ups[0].Weight+ups[1].Weight, ShouldBeGreaterThan, 1.0)
			})
		})

		Convey("When one player is a large outlier in a full cohort", func() {
			rows := make([]model.PlayerGameStat, 0, 30)
			for i := 0; i < 29; i++ {
				rows = append(rows, model.PlayerGameStat{PlayerID: fmt.Sprintf("p%02d", i), TeamID: "H", Minutes: 20})
			}
			rows = append(rows, model.PlayerGameStat{PlayerID: "star", TeamID: "A", Minutes: 20, PlusMinus: 20, BPM: 10})
			ups := m.Deltas(rows, flat(1500))
			star := ups[len(ups)-1]

			Convey("Then the raw impact exceeds the cap and the delta uses the capped value", func() {
				So(star.PlayerID, ShouldEqual, "star")
				So(star.Impact, ShouldAlmostEqual, 29/math.Sqrt(30), 1e-9)
				So(star.Capped, ShouldEqual, 2.0)
				So(star.Delta, ShouldAlmostEqual, 10*math.Pow(20.0/600.0, 0.7)*2, 1e-12)
			})

			Convey("And the rest of the cohort is below average but uncapped", func() {
				So(ups[0].Impact, ShouldAlmostEqual, -1/math.Sqrt(30), 1e-9)
				So(ups[0].Capped, ShouldEqual, ups[0].Impact)
			})
		})

		Convey("When the opponent is stronger", func() {
			rows := []model.PlayerGameStat{
				{PlayerID: "a", TeamID: "H", Minutes: 30, PlusMinus: 9},
				{PlayerID: "b", TeamID: "H", Minutes: 30, PlusMinus: 3},
				{PlayerID: "c", TeamID: "A", Minutes: 30, PlusMinus: -9},
			}
			weak := m.Deltas(rows, flat(1500))
			strong := m.Deltas(rows, func(team string) float64 {
				if team == "H" {
					return 1800
				}
				return 1500
			})

			Convey("Then plus-minus earned against it counts for more", func() {
				So(strong[0].Impact, ShouldBeGreaterThan, weak[0].Impact)
			})
		})

		Convey("When stats are not finite", func() {
			rows := []model.PlayerGameStat{
				{PlayerID: "a", TeamID: "H", Minutes: 30, PlusMinus: math.NaN(), BPM: math.Inf(1)},
				{PlayerID: "b", TeamID: "A", Minutes: 30, PlusMinus: 4, BPM: 1},
			}
			ups := m.Deltas(rows, flat(1500))

			Convey("Then they count as zero", func() {
				for _, u := range ups {
					So(math.IsNaN(u.Delta), ShouldBeFalse)
				}
				So(ups[0].Delta, ShouldBeLessThan, 0)
			})
		})
	})
}
