// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal keeps a sqlite history of merge and protect runs so the
// operator can see what was produced, what was skipped and which scratch
// areas were left behind.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Kind names the job a run performed.
type Kind string

const (
	KindMerge   Kind = "merge"
	KindProtect Kind = "protect"
)

// Outcome is the terminal result of a run.
type Outcome string

const (
	OutcomeMerged         Outcome = "merged"
	OutcomeNothingToMerge Outcome = "nothing_to_merge"
	OutcomeWriteFailed    Outcome = "write_failed"
	OutcomeProtected      Outcome = "protected"
	OutcomeNoFiles        Outcome = "no_files"
	OutcomeError          Outcome = "error"
)

const defaultLimit = 20

// Run is one journal row.
type Run struct {
	ID        string
	Kind      Kind
	Target    string
	Output    string
	Outcome   Outcome
	Succeeded int
	Skipped   int
	Failed    int
	Total     int
	// Leftover is a scratch directory that could not be removed.
	Leftover  string
	StartedAt time.Time
	Duration  time.Duration
}

// Store wraps the journal database.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

// DefaultPath returns ~/.config/pdfutil/history.db.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(dir, "pdfutil", "history.db")
}

// Open opens or creates the journal database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	s := &Store{db: db, lock: flock.New(path + ".lock")}
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
			kind TEXT NOT NULL,
			target TEXT NOT NULL,
			output TEXT,
			outcome TEXT NOT NULL,
			succeeded INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			total INTEGER NOT NULL DEFAULT 0,
			leftover TEXT,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts run, assigning an ID when it has none, and returns the
// stored row.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	// Serialize writers across processes; sqlite's own busy handling is
	// per-connection.
	if err := s.lock.Lock(); err != nil {
		return run, fmt.Errorf("locking journal: %w", err)
	}
	defer s.lock.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, target, output, outcome, succeeded, skipped, failed, total, leftover, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.Target, run.Output, string(run.Outcome),
		run.Succeeded, run.Skipped, run.Failed, run.Total, run.Leftover,
		run.StartedAt.UTC().Format(time.RFC3339Nano), run.Duration.Milliseconds(),
	)
	if err != nil {
		return run, fmt.Errorf("recording run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first. A non-positive limit uses
// the default of 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, target, output, outcome, succeeded, skipped, failed, total, leftover, started_at, duration_ms
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			kind       string
			outcome    string
			output     sql.NullString
			leftover   sql.NullString
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &kind, &r.Target, &output, &outcome,
			&r.Succeeded, &r.Skipped, &r.Failed, &r.Total, &leftover, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Kind = Kind(kind)
		r.Outcome = Outcome(outcome)
		r.Output = output.String
		r.Leftover = leftover.String
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			r.StartedAt = t
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
