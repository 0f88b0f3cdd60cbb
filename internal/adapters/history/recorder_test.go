package history_test

import (
	"testing"

	"github.com/okian/foresight/internal/adapters/history"
	"github.com/okian/foresight/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecorder(t *testing.T) {
	Convey("Given a recorder with mixed observations", t, func() {
		r := history.NewRecorder(4)
		r.Append(model.HistoryEntry{GameID: "1", EntityID: "BOS", Kind: model.KindTeam, Rating: 1511.97, Season: "2023"})
		r.Append(model.HistoryEntry{GameID: "1", EntityID: "LAL", Kind: model.KindTeam, Rating: 1488.03, Season: "2023"})
		r.Append(model.HistoryEntry{GameID: "1", EntityID: "Jayson Tatum", Kind: model.KindPlayer, Rating: 1503, Season: "2023"})

		Convey("Then counts are kept per kind", func() {
			So(r.Len(), ShouldEqual, 3)
			So(r.Count(model.KindTeam), ShouldEqual, 2)
			So(r.Count(model.KindPlayer), ShouldEqual, 1)
		})

		Convey("Then entries are filtered in append order", func() {
			teams := r.Entries(model.KindTeam)
			So(len(teams), ShouldEqual, 2)
			So(teams[0].EntityID, ShouldEqual, "BOS")
			So(teams[1].EntityID, ShouldEqual, "LAL")
		})

		Convey("When a caller mutates a returned slice", func() {
			teams := r.Entries(model.KindTeam)
			teams[0].Rating = 0
			all := r.All()
			all[2].EntityID = "someone else"

			Convey("Then the recorder is unaffected", func() {
				So(r.Entries(model.KindTeam)[0].Rating, ShouldEqual, 1511.97)
				So(r.Entries(model.KindPlayer)[0].EntityID, ShouldEqual, "Jayson Tatum")
			})
		})
	})

	Convey("Given a recorder built with a negative capacity", t, func() {
		r := history.NewRecorder(-1)

		Convey("Then it is empty and usable", func() {
			So(r.Len(), ShouldEqual, 0)
			So(r.Entries(model.KindPlayer), ShouldBeEmpty)
		})
	})
}
