package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okian/foresight/internal/adapters/repository"
	"github.com/okian/foresight/internal/domain/model"
	"github.com/okian/foresight/pkg/logger"
)

// Output layout under the output directory.
const (
	ResultsDir = "results"
	HistoryDir = "history"

	TeamFinalFile     = "team_elo_final.csv"
	PlayerFinalFile   = "player_elo_final.csv"
	TeamHistoryFile   = "team_elo_history.csv"
	PlayerHistoryFile = "player_elo_history.csv"

	dirMode = 0o755
)

// TopPlayersFile names the top-N export.
func TopPlayersFile(n int) string {
	return fmt.Sprintf("top_%d_players.csv", n)
}

// Paths lists the files written by one export. History paths are empty
// when there was nothing to write.
type Paths struct {
	TeamFinal     string
	PlayerFinal   string
	TopPlayers    string
	TeamHistory   string
	PlayerHistory string
}

// CSVWriter writes ratings and history as CSV files.
type CSVWriter struct {
	outputDir string
	topN      int
	logger    logger.Logger
}

// Option applies a configuration option to the CSVWriter.
type Option func(*CSVWriter)

// WithOutputDir sets the directory receiving results/ and history/.
func WithOutputDir(dir string) Option {
	return func(w *CSVWriter) {
		if dir != "" {
			w.outputDir = dir
		}
	}
}

// WithTopN sets the size of the top players file.
func WithTopN(n int) Option {
	return func(w *CSVWriter) {
		if n > 0 {
			w.topN = n
		}
	}
}

// WithLogger sets a custom logger for the writer.
func WithLogger(l logger.Logger) Option {
	return func(w *CSVWriter) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewCSVWriter constructs a CSVWriter with configuration options.
func NewCSVWriter(opts ...Option) *CSVWriter {
	w := &CSVWriter{
		outputDir: ".",
		topN:      DefaultTopN,
		logger:    logger.Discard(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// TopN returns the configured top players size.
func (w *CSVWriter) TopN() int { return w.topN }

// Write exports snap and history.
func (w *CSVWriter) Write(ctx context.Context, snap Snapshot, history []model.HistoryEntry) (Paths, error) {
	results := filepath.Join(w.outputDir, ResultsDir)
	hist := filepath.Join(w.outputDir, HistoryDir)
	for _, dir := range []string{results, hist} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return Paths{}, fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	}

	paths := Paths{
		TeamFinal:   filepath.Join(results, TeamFinalFile),
		PlayerFinal: filepath.Join(results, PlayerFinalFile),
		TopPlayers:  filepath.Join(results, TopPlayersFile(w.topN)),
	}
	finals := []struct {
		path    string
		column  string
		entries []repository.Entry
	}{
		{paths.TeamFinal, "team", snap.Teams},
		{paths.PlayerFinal, "player", snap.Players},
		{paths.TopPlayers, "player", snap.TopPlayers},
	}
	for _, f := range finals {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		if err := writeRanked(f.path, f.column, f.entries); err != nil {
			return paths, err
		}
	}

	teams, players := splitHistory(history)
	if len(teams) > 0 {
		paths.TeamHistory = filepath.Join(hist, TeamHistoryFile)
		if err := writeHistory(paths.TeamHistory, "team", teams); err != nil {
			return paths, err
		}
	}
	if len(players) > 0 {
		paths.PlayerHistory = filepath.Join(hist, PlayerHistoryFile)
		if err := writeHistory(paths.PlayerHistory, "player", players); err != nil {
			return paths, err
		}
	}

	w.logger.Info(ctx, "results saved",
		logger.String("dir", w.outputDir),
		logger.Int("teams", len(snap.Teams)),
		logger.Int("players", len(snap.Players)),
		logger.Int("historyEntries", len(history)),
	)
	return paths, nil
}

func splitHistory(history []model.HistoryEntry) (teams, players []model.HistoryEntry) {
	for _, h := range history {
		if h.Kind == model.KindTeam {
			teams = append(teams, h)
		} else {
			players = append(players, h)
		}
	}
	return teams, players
}

func writeRanked(path, column string, entries []repository.Entry) error {
	return writeFile(path, []string{column, "elo", "rank"}, len(entries), func(i int) []string {
		e := entries[i]
		return []string{e.ID, formatRating(e.Rating), strconv.Itoa(e.Rank)}
	})
}

func writeHistory(path, column string, entries []model.HistoryEntry) error {
	return writeFile(path, []string{"game_id", column, "elo", "season"}, len(entries), func(i int) []string {
		h := entries[i]
		return []string{h.GameID, h.EntityID, formatRating(h.Rating), h.Season}
	})
}

// writeFile writes header and n records to path.
func writeFile(path string, header []string, n int, record func(i int) []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWriteOutput, cerr)
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteOutput, path, err)
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(record(i)); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWriteOutput, path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteOutput, path, err)
	}
	return nil
}

func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
