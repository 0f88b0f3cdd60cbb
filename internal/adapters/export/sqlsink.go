package export

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	"github.com/okian/foresight/internal/adapters/repository"
	"github.com/okian/foresight/internal/domain/model"
	_ "modernc.org/sqlite" // driver: sqlite
)

// Driver names a supported database.
type Driver string

// Supported drivers.
const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Run is one rating run as persisted by the sink.
type Run struct {
	ID          uuid.UUID
	StartedAt   time.Time
	Games       int
	Processed   int
	Skipped     int
	Failed      int
	Interrupted bool
	Snapshot    Snapshot
	History     []model.HistoryEntry
}

// SQLSink persists runs to rating_runs, rating_snapshots and rating_history.
type SQLSink struct {
	db     *sql.DB
	driver Driver
}

// OpenSQLSink opens a database and ensures the schema exists.
func OpenSQLSink(ctx context.Context, driver Driver, dsn string) (*SQLSink, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrSink, err)
	}
	if driver == DriverSQLite {
		// One connection keeps an in-memory database alive between calls.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrSink, err)
	}

	s := &SQLSink{db: db, driver: driver}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *SQLSink) Close() error {
	return s.db.Close()
}

func (s *SQLSink) ensureSchema(ctx context.Context) error {
	ratingType := "REAL"
	if s.driver == DriverPostgres {
		ratingType = "DOUBLE PRECISION"
	}
	for _, stmt := range schema(ratingType) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: schema: %w", ErrSink, err)
		}
	}
	return nil
}

func schema(ratingType string) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS rating_runs (
  id TEXT PRIMARY KEY,
  started_at BIGINT NOT NULL,
  games INTEGER NOT NULL,
  processed INTEGER NOT NULL,
  skipped INTEGER NOT NULL,
  failed INTEGER NOT NULL,
  interrupted INTEGER NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS rating_snapshots (
  run_id TEXT NOT NULL REFERENCES rating_runs(id) ON DELETE CASCADE,
  kind TEXT NOT NULL,
  entity_id TEXT NOT NULL,
  rating ` + ratingType + ` NOT NULL,
  rank INTEGER NOT NULL,
  PRIMARY KEY (run_id, kind, entity_id)
)`,
		`CREATE TABLE IF NOT EXISTS rating_history (
  run_id TEXT NOT NULL REFERENCES rating_runs(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL,
  game_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  entity_id TEXT NOT NULL,
  rating ` + ratingType + ` NOT NULL,
  season TEXT NOT NULL,
  PRIMARY KEY (run_id, seq)
)`,
	}
}

// Write stores run in a single transaction.
func (s *SQLSink) Write(ctx context.Context, run Run) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrSink, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	interrupted := 0
	if run.Interrupted {
		interrupted = 1
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO rating_runs (id, started_at, games, processed, skipped, failed, interrupted)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		run.ID.String(), run.StartedAt.Unix(), run.Games, run.Processed, run.Skipped, run.Failed, interrupted,
	); err != nil {
		return fmt.Errorf("%w: run: %w", ErrSink, err)
	}

	snap, err := tx.PrepareContext(ctx,
		`INSERT INTO rating_snapshots (run_id, kind, entity_id, rating, rank) VALUES ($1,$2,$3,$4,$5)`)
	if err != nil {
		return fmt.Errorf("%w: prepare snapshot: %w", ErrSink, err)
	}
	defer snap.Close()
	for _, entries := range [][]repository.Entry{run.Snapshot.Teams, run.Snapshot.Players} {
		for _, e := range entries {
			if _, err = snap.ExecContext(ctx, run.ID.String(), string(e.Kind), e.ID, e.Rating, e.Rank); err != nil {
				return fmt.Errorf("%w: snapshot %s %s: %w", ErrSink, e.Kind, e.ID, err)
			}
		}
	}

	hist, err := tx.PrepareContext(ctx,
		`INSERT INTO rating_history (run_id, seq, game_id, kind, entity_id, rating, season)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`)
	if err != nil {
		return fmt.Errorf("%w: prepare history: %w", ErrSink, err)
	}
	defer hist.Close()
	for i, h := range run.History {
		if _, err = hist.ExecContext(ctx, run.ID.String(), i, h.GameID, string(h.Kind), h.EntityID, h.Rating, h.Season); err != nil {
			return fmt.Errorf("%w: history %d: %w", ErrSink, i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrSink, err)
	}
	return nil
}

// Ratings reads back the stored snapshot of one kind in rank order.
func (s *SQLSink) Ratings(ctx context.Context, runID uuid.UUID, kind model.Kind) ([]repository.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entity_id, rating, rank FROM rating_snapshots WHERE run_id=$1 AND kind=$2 ORDER BY rank`,
		runID.String(), string(kind))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSink, err)
	}
	defer rows.Close()

	var out []repository.Entry
	for rows.Next() {
		e := repository.Entry{Kind: kind}
		if err := rows.Scan(&e.ID, &e.Rating, &e.Rank); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSink, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSink, err)
	}
	return out, nil
}

// HistoryLen counts the history rows stored for a run.
func (s *SQLSink) HistoryLen(ctx context.Context, runID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rating_history WHERE run_id=$1`, runID.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSink, err)
	}
	return n, nil
}
