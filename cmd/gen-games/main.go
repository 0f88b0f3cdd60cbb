// Command gen-games writes a synthetic league as a normalized box score CSV.
package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"os"

	"github.com/okian/foresight/internal/testgames"
	"github.com/okian/foresight/pkg/logger"
)

func main() {
	d := testgames.Defaults()
	var (
		output       = flag.String("output", "", "Output CSV file (default: stdout)")
		seed         = flag.Uint64("seed", d.Seed, "Random seed; equal seeds give equal leagues")
		teams        = flag.Int("teams", d.Teams, "Number of teams (at most 30)")
		firstSeason  = flag.Int("first-season", d.FirstSeason, "Year the first season starts")
		seasons      = flag.Int("seasons", d.Seasons, "Number of seasons")
		games        = flag.Int("games", d.GamesPerSeason, "Games per season")
		roster       = flag.Int("roster", d.RosterSize, "Players per team")
		degenerate   = flag.Int("degenerate-every", 0, "Add a third team's row to every n-th game (0 disables)")
		unresolvable = flag.Int("unresolvable-every", 0, "Drop the home points of every n-th game (0 disables)")
	)
	flag.Parse()

	if err := logger.Init(logger.WithConsole(os.Stderr)); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	ctx := context.Background()
	log := logger.Get()

	cfg := testgames.Config{
		Seed:              *seed,
		Teams:             *teams,
		FirstSeason:       *firstSeason,
		Seasons:           *seasons,
		GamesPerSeason:    *games,
		RosterSize:        *roster,
		DegenerateEvery:   *degenerate,
		UnresolvableEvery: *unresolvable,
	}
	league := testgames.Generate(cfg)

	if err := write(*output, func(w io.Writer) error { return testgames.WriteCSV(w, league) }); err != nil {
		log.Error(ctx, "write failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "league written",
		logger.Int("games", len(league)),
		logger.String("output", *output),
	)
}

// write sends the output of fn to path, or to stdout when path is empty.
func write(path string, fn func(io.Writer) error) error {
	if path == "" {
		bw := bufio.NewWriter(os.Stdout)
		if err := fn(bw); err != nil {
			return err
		}
		return bw.Flush()
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
