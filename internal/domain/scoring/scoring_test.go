package scoring_test

import (
	"math"
	"testing"

	scoring "github.com/okian/foresight/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExpectedScore(t *testing.T) {
	Convey("Given two ratings", t, func() {
		Convey("When they are equal", func() {
			Convey("Then the expectancy is exactly one half", func() {
				So(scoring.ExpectedScore(1500, 1500), ShouldEqual, 0.5)
				So(scoring.ExpectedScore(1873.25, 1873.25), ShouldEqual, 0.5)
			})
		})

		Convey("When one side is 100 points stronger", func() {
			e := scoring.ExpectedScore(1600, 1500)

			Convey("Then the stronger side is favored", func() {
				So(e, ShouldAlmostEqual, 0.640065, 1e-6)
				So(e+scoring.ExpectedScore(1500, 1600), ShouldAlmostEqual, 1.0, 1e-12)
			})
		})
	})
}

func TestActualScore(t *testing.T) {
	Convey("Given point differentials", t, func() {
		So(scoring.ActualScore(12), ShouldEqual, 1.0)
		So(scoring.ActualScore(0), ShouldEqual, 0.5)
		So(scoring.ActualScore(-3), ShouldEqual, 0.0)
	})
}

func TestMarginMultiplier(t *testing.T) {
	Convey("Given a blended margin", t, func() {
		So(scoring.MarginMultiplier(0), ShouldEqual, 0.0)
		So(scoring.MarginMultiplier(7), ShouldAlmostEqual, math.Log(8), 1e-12)
		So(scoring.MarginMultiplier(-7), ShouldAlmostEqual, math.Log(8), 1e-12)
	})
}

func TestTeamScorer_Score(t *testing.T) {
	Convey("Given a scorer with default settings", t, func() {
		s := scoring.NewTeamScorer()

		Convey("When a home team at 1500 beats a 1500 visitor by 10 with no factor data", func() {
			r := s.Score(scoring.Input{HomeRating: 1500, AwayRating: 1500, PointDiff: 10})

			Convey("Then the blended margin and delta match the hand computation", func() {
				So(r.Expected, ShouldAlmostEqual, 0.6401, 1e-4)
				So(r.Actual, ShouldEqual, 1.0)
				So(r.Margin, ShouldAlmostEqual, 7.0, 1e-12)
				So(r.Delta, ShouldAlmostEqual, 16*(1-r.Expected)*math.Log(8), 1e-12)
				So(r.Delta, ShouldAlmostEqual, 11.97, 0.01)
			})
		})

		Convey("When the home team loses", func() {
			r := s.Score(scoring.Input{HomeRating: 1500, AwayRating: 1500, PointDiff: -4, FactorMargin: -2})

			Convey("Then the delta is negative", func() {
				So(r.Delta, ShouldBeLessThan, 0)
				So(r.Margin, ShouldAlmostEqual, -3.4, 1e-12)
			})
		})
	})

	Convey("Given a scorer without home advantage", t, func() {
		s := scoring.NewTeamScorer(scoring.WithHomeAdvantage(0), scoring.WithK(20))

		Convey("When equal teams tie", func() {
			r := s.Score(scoring.Input{HomeRating: 1550, AwayRating: 1550})

			Convey("Then nothing moves", func() {
				So(r.Expected, ShouldEqual, 0.5)
				So(r.Delta, ShouldEqual, 0.0)
			})
		})
	})
}
