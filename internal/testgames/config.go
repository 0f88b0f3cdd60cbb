// Package testgames generates deterministic synthetic leagues for exercising
// the rating engine end to end.
package testgames

// Config holds configuration for a generated league.
type Config struct {
	Seed           uint64 // same seed, same league
	Teams          int    // number of teams, at most len(teamCodes)
	FirstSeason    int    // starting year of the first season
	Seasons        int    // number of consecutive seasons
	GamesPerSeason int    // games scheduled in each season
	RosterSize     int    // players per team; the first five start

	// Every n-th game is broken on purpose when n > 0.
	DegenerateEvery   int // a row for a third team is added
	UnresolvableEvery int // the home team's points are unknown
}

// Defaults returns a small league suitable for tests.
func Defaults() Config {
	return Config{
		Seed:           7,
		Teams:          8,
		FirstSeason:    2022,
		Seasons:        2,
		GamesPerSeason: 60,
		RosterSize:     9,
	}
}

func (c Config) normalized() Config {
	d := Defaults()
	if c.Teams < 2 || c.Teams > len(teamCodes) {
		c.Teams = d.Teams
	}
	if c.FirstSeason <= 0 {
		c.FirstSeason = d.FirstSeason
	}
	if c.Seasons <= 0 {
		c.Seasons = d.Seasons
	}
	if c.GamesPerSeason <= 0 {
		c.GamesPerSeason = d.GamesPerSeason
	}
	if c.RosterSize < starters {
		c.RosterSize = d.RosterSize
	}
	return c
}
