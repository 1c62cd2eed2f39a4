// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package replay records the raw per-backend results of aggregation runs in
// SQLite so that merging and ranking can be re-run offline.
package replay

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/literature-engine/internal/errors"
	"github.com/pdiddy/literature-engine/internal/search"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// DefaultDBPath is used when no database path is configured.
const DefaultDBPath = "data/replay.db"

// defaultListLimit caps ListRuns when the caller passes no limit.
const defaultListLimit = 20

var _ search.Recorder = (*Store)(nil)

// Store manages the replay database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Run is a recorded aggregation run.
type Run struct {
	ID        string
	Request   search.Request
	CreatedAt time.Time
	Results   []types.SourceResult
}

// RunSummary describes a recorded run without its records.
type RunSummary struct {
	ID        string
	Query     string
	Limit     int
	CreatedAt time.Time
	Records   int
	Failures  int
}

// Open opens or creates the replay database at path, creating the parent
// directory and the schema when missing.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultDBPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating replay directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			result_limit INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_results (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			backend TEXT NOT NULL,
			error TEXT,
			record_count INTEGER NOT NULL,
			records TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores one run and its per-backend results in a single
// transaction. Recording the same run ID twice fails.
func (s *Store) Record(ctx context.Context, runID string, req search.Request, results []types.SourceResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, query, result_limit, created_at) VALUES (?, ?, ?, ?)`,
		runID, req.Query, req.Limit, s.now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("inserting run %s: %w", runID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_results (run_id, position, backend, error, record_count, records) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing result insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range results {
		records := r.Records
		if records == nil {
			records = []types.LiteratureRecord{}
		}
		data, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("marshaling %s records: %w", r.Source, err)
		}
		if _, err := stmt.ExecContext(ctx, runID, i, string(r.Source), nullString(r.Error), len(records), string(data)); err != nil {
			return fmt.Errorf("inserting %s result: %w", r.Source, err)
		}
	}

	return tx.Commit()
}

// LoadRun returns the recorded run with backend results in fan-out order.
// An unknown ID is NOT_FOUND.
func (s *Store) LoadRun(ctx context.Context, runID string) (Run, error) {
	var (
		run       = Run{ID: runID}
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT query, result_limit, created_at FROM runs WHERE id = ?`, runID,
	).Scan(&run.Request.Query, &run.Request.Limit, &createdAt)
	if err == sql.ErrNoRows {
		return Run{}, errors.NotFound("run %s not found", runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("loading run %s: %w", runID, err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT backend, error, records FROM run_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return Run{}, fmt.Errorf("loading results for run %s: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			backend string
			errMsg  sql.NullString
			data    string
		)
		if err := rows.Scan(&backend, &errMsg, &data); err != nil {
			return Run{}, fmt.Errorf("scanning result row: %w", err)
		}
		result := types.SourceResult{Source: types.Source(backend), Error: errMsg.String}
		if err := json.Unmarshal([]byte(data), &result.Records); err != nil {
			return Run{}, fmt.Errorf("decoding %s records: %w", backend, err)
		}
		if result.Records == nil {
			result.Records = []types.LiteratureRecord{}
		}
		run.Results = append(run.Results, result)
	}
	return run, rows.Err()
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.query, r.result_limit, r.created_at,
			COALESCE(SUM(rr.record_count), 0),
			COALESCE(SUM(CASE WHEN rr.error IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM runs r
		LEFT JOIN run_results rr ON rr.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			rs        RunSummary
			createdAt string
		)
		if err := rows.Scan(&rs.ID, &rs.Query, &rs.Limit, &createdAt, &rs.Records, &rs.Failures); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		rs.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, rs)
	}
	return runs, rows.Err()
}

// Replay re-runs merge and rank over a recorded run without contacting any
// provider. A zero opts.CurrentYear uses the year the run was recorded and
// zero weights take the defaults.
func (s *Store) Replay(ctx context.Context, runID string, opts search.AssembleOptions) (search.Outcome, error) {
	run, err := s.LoadRun(ctx, runID)
	if err != nil {
		return search.Outcome{}, err
	}
	if opts.CurrentYear == 0 && !run.CreatedAt.IsZero() {
		opts.CurrentYear = run.CreatedAt.Year()
	}
	if opts.Weights.Citation == 0 && opts.Weights.SourceNudge == nil {
		opts.Weights = types.DefaultRankWeights()
	}

	out := search.Assemble(run.Results, opts)
	out.RunID = run.ID
	out.Request = run.Request
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
