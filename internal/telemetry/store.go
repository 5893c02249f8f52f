// Package telemetry records ingestion run history in a local SQLite
// database so the CLI can report what was indexed, when, and how it went.
package telemetry

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// RunStatus is the terminal state of one ingestion run.
type RunStatus string

const (
	StatusOK     RunStatus = "ok"
	StatusFailed RunStatus = "failed"
)

// Run is one recorded ingestion of one source.
type Run struct {
	ID        int64
	Source    string
	Documents int
	Batches   int
	Duration  time.Duration
	Status    RunStatus
	Error     string
	StartedAt time.Time
}

// Store persists run history. A nil *Store is a valid no-op recorder so
// callers that do not care about history can skip the wiring.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the run-history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run history database: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingest_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		documents INTEGER NOT NULL DEFAULT 0,
		batches INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ingest_runs_started ON ingest_runs(started_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create run history schema: %w", err)
	}
	return nil
}

// RecordRun inserts one completed run.
func (s *Store) RecordRun(run Run) error {
	if s == nil {
		return nil
	}
	_, err := s.db.Exec(`
		INSERT INTO ingest_runs (source, documents, batches, duration_ms, status, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.Source, run.Documents, run.Batches, run.Duration.Milliseconds(), string(run.Status), run.Error, run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs first, at most limit of them.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, source, documents, batches, duration_ms, status, error, started_at
		FROM ingest_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			durationMS int64
			status     string
		)
		if err := rows.Scan(&r.ID, &r.Source, &r.Documents, &r.Batches, &durationMS, &status, &r.Error, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Status = RunStatus(status)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
