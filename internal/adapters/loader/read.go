package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/foresight/internal/domain/dedupe"
	"github.com/okian/foresight/pkg/logger"
	"github.com/okian/foresight/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// ctxCheckEvery is how many records are read between cancellation checks.
const ctxCheckEvery = 1024

// boxRow is one player (or team-total) line of a box score.
type boxRow struct {
	line                    int
	gameID, season, date    string
	home, away, team        string
	player                  string
	total                   bool
	unnamed                 bool // player missing; points count toward the team only
	points                  *float64
	minutes, plusMinus, bpm float64
}

// advancedRow carries the advanced stats joined onto a basic row.
type advancedRow struct {
	plusMinus *float64
	bpm       *float64
}

// factorRow is one team's four-factor line for a game.
type factorRow struct {
	gameID, team            string
	efg, tov, orb, ftr, pace *float64
}

// sources is everything read from disk before assembly.
type sources struct {
	rows    []boxRow
	factors []factorRow
}

// scan streams the records of path to fn after resolving its header.
func scan(ctx context.Context, path string, required []string, fn func(h header, line int, rec []string)) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNoInput)
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	first, err := r.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%s is empty: %w", path, ErrNoInput)
	}
	if err != nil {
		return fmt.Errorf("read %s header: %w", name, err)
	}
	h := newHeader(name, first)
	if err := h.require(required...); err != nil {
		return err
	}

	n := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		n++
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line, _ := r.FieldPos(0)
		fn(h, line, rec)
	}
	metrics.RecordRowsRead(name, n)
	return nil
}

// isTotalMarker reports whether a player field marks a team-total row. A
// blank field is a malformed player row, not a marker.
func isTotalMarker(player string) bool {
	switch strings.ToUpper(strings.TrimSpace(player)) {
	case "TEAM", "TEAM TOTALS", "TOTALS":
		return true
	default:
		return false
	}
}

// parseBox reads the fields shared by both layouts' box score rows. It
// returns false for rows that cannot belong to any game.
func (l *Loader) parseBox(p fieldParser, h header, line int, rec []string) (boxRow, bool) {
	row := boxRow{
		line:   line,
		gameID: h.get(rec, colGameID),
		home:   h.get(rec, colHome),
		away:   h.get(rec, colAway),
		team:   h.get(rec, colTeam),
		date:   h.get(rec, colDate),
	}
	if row.gameID == "" {
		p.iss.add(p.file, line, colGameID, "")
		return row, false
	}
	if row.team == "" {
		p.iss.add(p.file, line, colTeam, "")
		return row, false
	}

	rawPlayer := h.get(rec, colPlayer)
	row.total = isTotalMarker(rawPlayer)
	if !row.total {
		row.player = l.names.Canonical(rawPlayer)
		if row.player == "" {
			p.iss.add(p.file, line, colPlayer, rawPlayer)
			row.unnamed = true
		}
	}

	row.season = h.get(rec, colSeason)
	if row.season == "" {
		if s, ok := SeasonFromDate(row.date); ok {
			row.season = s
		} else {
			if row.date != "" {
				p.iss.add(p.file, line, colDate, row.date)
			}
			row.season = l.defaultSeason
		}
	}
	if row.date != "" {
		row.date = normalizeDate(row.date)
	}

	row.points = p.optional(line, colPoints, h.get(rec, colPoints))
	row.minutes = p.minutes(line, colMinutes, h.get(rec, colMinutes))
	row.plusMinus = p.number(line, colPlusMinus, h.get(rec, colPlusMinus))
	row.bpm = p.number(line, colBPM, h.get(rec, colBPM))
	return row, true
}

// parseFactors reads a four-factor line. It returns false when the row
// carries no factor at all.
func parseFactors(p fieldParser, h header, line int, rec []string, gameID, team string) (factorRow, bool) {
	f := factorRow{
		gameID: gameID,
		team:   team,
		efg:    p.optional(line, colEFG, h.get(rec, colEFG)),
		tov:    p.optional(line, colTOV, h.get(rec, colTOV)),
		orb:    p.optional(line, colORB, h.get(rec, colORB)),
		ftr:    p.optional(line, colFTR, h.get(rec, colFTR)),
		pace:   p.optional(line, colPace, h.get(rec, colPace)),
	}
	present := f.efg != nil || f.tov != nil || f.orb != nil || f.ftr != nil || f.pace != nil
	return f, present
}

// readNormalized reads the single-file layout.
func (l *Loader) readNormalized(ctx context.Context, iss *issues) (sources, error) {
	path := l.normalizedPath()
	p := fieldParser{file: filepath.Base(path), iss: iss}

	var src sources
	err := scan(ctx, path, []string{colGameID, colHome, colAway, colTeam, colPlayer},
		func(h header, line int, rec []string) {
			row, ok := l.parseBox(p, h, line, rec)
			if !ok {
				return
			}
			src.rows = append(src.rows, row)
			if f, ok := parseFactors(p, h, line, rec, row.gameID, row.team); ok {
				src.factors = append(src.factors, f)
			}
		})
	return src, err
}

// readUnified reads the three collector files concurrently and joins the
// advanced stats onto the basic rows.
func (l *Loader) readUnified(ctx context.Context, iss *issues) (sources, error) {
	var (
		src      sources
		advanced = make(map[string]advancedRow)
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		path := filepath.Join(l.dataDir, BasicFile)
		p := fieldParser{file: BasicFile, iss: iss}
		return scan(gctx, path, []string{colGameID, colHome, colAway, colTeam, colPlayer},
			func(h header, line int, rec []string) {
				if row, ok := l.parseBox(p, h, line, rec); ok {
					src.rows = append(src.rows, row)
				}
			})
	})

	g.Go(func() error {
		path := filepath.Join(l.dataDir, AdvancedFile)
		p := fieldParser{file: AdvancedFile, iss: iss}
		err := scan(gctx, path, []string{colGameID, colTeam, colPlayer},
			func(h header, line int, rec []string) {
				key := dedupe.RowKey(h.get(rec, colGameID), h.get(rec, colTeam), l.names.Canonical(h.get(rec, colPlayer)))
				if _, seen := advanced[key]; seen {
					return
				}
				advanced[key] = advancedRow{
					plusMinus: p.optional(line, colPlusMinus, h.get(rec, colPlusMinus)),
					bpm:       p.optional(line, colBPM, h.get(rec, colBPM)),
				}
			})
		return l.optionalFile(ctx, AdvancedFile, err)
	})

	g.Go(func() error {
		path := filepath.Join(l.dataDir, FourFactorsFile)
		p := fieldParser{file: FourFactorsFile, iss: iss}
		err := scan(gctx, path, []string{colGameID, colTeam},
			func(h header, line int, rec []string) {
				gameID, team := h.get(rec, colGameID), h.get(rec, colTeam)
				if gameID == "" || team == "" {
					return
				}
				if f, ok := parseFactors(p, h, line, rec, gameID, team); ok {
					src.factors = append(src.factors, f)
				}
			})
		return l.optionalFile(ctx, FourFactorsFile, err)
	})

	if err := g.Wait(); err != nil {
		return sources{}, err
	}

	for i := range src.rows {
		r := &src.rows[i]
		if r.total || r.unnamed {
			continue
		}
		a, ok := advanced[dedupe.RowKey(r.gameID, r.team, r.player)]
		if !ok {
			continue
		}
		if a.plusMinus != nil {
			r.plusMinus = *a.plusMinus
		}
		if a.bpm != nil {
			r.bpm = *a.bpm
		}
	}
	return src, nil
}

// optionalFile downgrades a missing supplementary file to a warning.
func (l *Loader) optionalFile(ctx context.Context, name string, err error) error {
	if errors.Is(err, ErrNoInput) {
		l.logger.Warn(ctx, "supplementary input missing, using defaults", logger.String("file", name))
		return nil
	}
	return err
}
