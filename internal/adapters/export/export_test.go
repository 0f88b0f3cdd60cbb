package export_test

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/foresight/internal/adapters/export"
	"github.com/okian/foresight/internal/adapters/repository"
	"github.com/okian/foresight/internal/domain/model"
	"github.com/okian/foresight/internal/domain/priors"
	. "github.com/smartystreets/goconvey/convey"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return recs
}

// seeded returns a store with three teams, two of them tied, and three players.
func seeded(t *testing.T) *repository.MemoryStore {
	t.Helper()
	s := repository.NewMemoryStore(repository.WithPriors(priors.New(priors.WithoutBuiltins())))
	for _, e := range []struct {
		kind   model.Kind
		id     string
		rating float64
	}{
		{model.KindTeam, "LAL", 1490},
		{model.KindTeam, "BOS", 1520},
		{model.KindTeam, "MIA", 1490},
		{model.KindPlayer, "a", 1510.5},
		{model.KindPlayer, "b", 1620.25},
		{model.KindPlayer, "c", 1400},
	} {
		s.Rating(e.kind, e.id)
		if err := s.Set(e.kind, e.id, e.rating); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	return s
}

func history() []model.HistoryEntry {
	return []model.HistoryEntry{
		{GameID: "1", EntityID: "BOS", Kind: model.KindTeam, Rating: 1511.97, Season: "2023"},
		{GameID: "1", EntityID: "LAL", Kind: model.KindTeam, Rating: 1488.03, Season: "2023"},
		{GameID: "1", EntityID: "a", Kind: model.KindPlayer, Rating: 1503.2, Season: "2023"},
	}
}

func TestTake(t *testing.T) {
	Convey("Given a store with tied teams", t, func() {
		snap, err := export.Take(seeded(t), 2)

		Convey("Then entities are ranked by rating with first-reference tie-breaks", func() {
			So(err, ShouldBeNil)
			So(snap.Teams[0].ID, ShouldEqual, "BOS")
			So(snap.Teams[1].ID, ShouldEqual, "LAL")
			So(snap.Teams[2].ID, ShouldEqual, "MIA")
			So(snap.Teams[1].Rank, ShouldEqual, 2)
			So(snap.Teams[2].Rank, ShouldEqual, 3)
		})

		Convey("Then the top players view is truncated", func() {
			So(len(snap.TopPlayers), ShouldEqual, 2)
			So(snap.TopPlayers[0].ID, ShouldEqual, "b")
			So(len(snap.Players), ShouldEqual, 3)
		})

		Convey("Then entries can be found by id", func() {
			e, ok := export.Find(snap.Players, "c")
			So(ok, ShouldBeTrue)
			So(e.Rank, ShouldEqual, 3)
			_, ok = export.Find(snap.Players, "zz")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a non-positive top size", t, func() {
		_, err := export.Take(seeded(t), 0)

		Convey("Then the snapshot fails", func() {
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})
	})
}

func TestCSVWriter(t *testing.T) {
	Convey("Given a snapshot and its history", t, func() {
		dir := t.TempDir()
		snap, err := export.Take(seeded(t), 2)
		So(err, ShouldBeNil)

		w := export.NewCSVWriter(export.WithOutputDir(dir), export.WithTopN(2))
		paths, err := w.Write(context.Background(), snap, history())

		Convey("Then the final ratings are written with ranks", func() {
			So(err, ShouldBeNil)
			So(paths.TeamFinal, ShouldEqual, filepath.Join(dir, "results", "team_elo_final.csv"))
			recs := readCSV(t, paths.TeamFinal)
			So(recs[0], ShouldResemble, []string{"team", "elo", "rank"})
			So(recs[1], ShouldResemble, []string{"BOS", "1520", "1"})
			So(recs[3], ShouldResemble, []string{"MIA", "1490", "3"})
		})

		Convey("Then the top players file is named after its size", func() {
			So(filepath.Base(paths.TopPlayers), ShouldEqual, "top_2_players.csv")
			recs := readCSV(t, paths.TopPlayers)
			So(len(recs), ShouldEqual, 3)
			So(recs[1], ShouldResemble, []string{"b", "1620.25", "1"})
		})

		Convey("Then history is split by kind in processing order", func() {
			teams := readCSV(t, paths.TeamHistory)
			So(teams[0], ShouldResemble, []string{"game_id", "team", "elo", "season"})
			So(teams[1], ShouldResemble, []string{"1", "BOS", "1511.97", "2023"})
			So(len(teams), ShouldEqual, 3)

			players := readCSV(t, paths.PlayerHistory)
			So(players[0], ShouldResemble, []string{"game_id", "player", "elo", "season"})
			So(len(players), ShouldEqual, 2)
		})
	})

	Convey("Given an empty history", t, func() {
		dir := t.TempDir()
		snap, _ := export.Take(seeded(t), 20)
		paths, err := export.NewCSVWriter(export.WithOutputDir(dir)).Write(context.Background(), snap, nil)

		Convey("Then no history files are written", func() {
			So(err, ShouldBeNil)
			So(paths.TeamHistory, ShouldEqual, "")
			_, statErr := os.Stat(filepath.Join(dir, "history", "team_elo_history.csv"))
			So(errors.Is(statErr, os.ErrNotExist), ShouldBeTrue)
			So(filepath.Base(paths.TopPlayers), ShouldEqual, "top_20_players.csv")
		})
	})

	Convey("Given an output path that is a file", t, func() {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "out")
		So(os.WriteFile(blocker, nil, 0o600), ShouldBeNil)

		_, err := export.NewCSVWriter(export.WithOutputDir(blocker)).Write(context.Background(), export.Snapshot{}, nil)

		Convey("Then the write fails", func() {
			So(errors.Is(err, export.ErrWriteOutput), ShouldBeTrue)
		})
	})
}

func TestSQLSink(t *testing.T) {
	Convey("Given an in-memory SQLite sink", t, func() {
		ctx := context.Background()
		sink, err := export.OpenSQLSink(ctx, export.DriverSQLite, ":memory:")
		So(err, ShouldBeNil)
		defer sink.Close()

		snap, _ := export.Take(seeded(t), 20)
		run := export.Run{
			ID:        uuid.New(),
			StartedAt: time.Unix(1700000000, 0),
			Games:     1,
			Processed: 1,
			Snapshot:  snap,
			History:   history(),
		}

		Convey("When a run is written", func() {
			So(sink.Write(ctx, run), ShouldBeNil)

			Convey("Then its snapshot reads back in rank order", func() {
				teams, err := sink.Ratings(ctx, run.ID, model.KindTeam)
				So(err, ShouldBeNil)
				So(len(teams), ShouldEqual, 3)
				So(teams[0].ID, ShouldEqual, "BOS")
				So(teams[0].Rating, ShouldEqual, 1520.0)
				So(teams[2].Rank, ShouldEqual, 3)

				players, err := sink.Ratings(ctx, run.ID, model.KindPlayer)
				So(err, ShouldBeNil)
				So(players[0].ID, ShouldEqual, "b")
			})

			Convey("Then every history entry is stored", func() {
				n, err := sink.HistoryLen(ctx, run.ID)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})

			Convey("Then writing the same run again fails without partial rows", func() {
				So(errors.Is(sink.Write(ctx, run), export.ErrSink), ShouldBeTrue)
				n, _ := sink.HistoryLen(ctx, run.ID)
				So(n, ShouldEqual, 3)
			})
		})
	})

	Convey("Given an unknown driver", t, func() {
		_, err := export.OpenSQLSink(context.Background(), "mysql", "x")

		Convey("Then opening fails", func() {
			So(errors.Is(err, export.ErrUnsupportedDriver), ShouldBeTrue)
		})
	})
}
