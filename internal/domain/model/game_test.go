package model_test

import (
	"slices"
	"testing"

	"github.com/okian/foresight/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ids(ids ...string) []model.Game {
	games := make([]model.Game, 0, len(ids))
	for _, id := range ids {
		games = append(games, model.Game{ID: id})
	}
	return games
}

func sorted(games []model.Game) []string {
	order := model.IDOrder(games)
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.ID)
	}
	slices.SortStableFunc(out, order)
	return out
}

func TestIDOrder(t *testing.T) {
	Convey("Given integer ids of different widths", t, func() {
		games := ids("10", "9", "100", "0022300001")

		Convey("Then they sort by value", func() {
			So(sorted(games), ShouldResemble, []string{"9", "10", "100", "0022300001"})
		})
	})

	Convey("Given ids that are equal as numbers", t, func() {
		order := model.IDOrder(ids("9", "09"))

		Convey("Then the string form breaks the tie", func() {
			So(order("09", "9"), ShouldBeLessThan, 0)
			So(order("9", "9"), ShouldEqual, 0)
		})
	})

	Convey("Given one id that is not an integer", t, func() {
		games := ids("10", "9", "A1")

		Convey("Then every id compares as a string", func() {
			So(sorted(games), ShouldResemble, []string{"10", "9", "A1"})
		})
	})
}
