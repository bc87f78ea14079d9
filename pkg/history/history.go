// Package history persists typing session summaries in SQLite.
//
// Only counts, timings, and outcomes are stored. The typed text never
// reaches this package; sessions do not persist their payload.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.

	"github.com/ghosttype/ghosttype/pkg/engine"
	"github.com/ghosttype/ghosttype/pkg/logging"
)

// Store wraps SQLite access for session summaries. It implements
// engine.Recorder.
type Store struct {
	db  *sql.DB
	log *logging.Logger
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, log *logging.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, log: log}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			wpm REAL NOT NULL,
			length INTEGER NOT NULL,
			emitted INTEGER NOT NULL,
			outcome TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record stores one finished session. Implements engine.Recorder:
// persistence failures are logged, never surfaced into the engine.
func (s *Store) Record(rec engine.SessionRecord) {
	if err := s.Insert(context.Background(), rec); err != nil {
		s.log.Errorf("failed to record session %s: %v", rec.ID, err)
	}
}

// Insert stores one finished session.
func (s *Store) Insert(ctx context.Context, rec engine.SessionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, started_at, ended_at, wpm, length, emitted, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(),
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.EndedAt.UTC().Format(time.RFC3339Nano),
		rec.WPM,
		rec.Length,
		rec.Emitted,
		string(rec.Outcome),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Entry is one stored session summary.
type Entry struct {
	SessionID string
	StartedAt time.Time
	EndedAt   time.Time
	WPM       float64
	Length    int
	Emitted   int
	Outcome   engine.Outcome
}

// List returns the most recent sessions, newest first. limit <= 0
// means no limit.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT session_id, started_at, ended_at, wpm, length, emitted, outcome
		FROM sessions ORDER BY ended_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, ended, outcome string
		if err := rows.Scan(&e.SessionID, &started, &ended, &e.WPM, &e.Length, &e.Emitted, &outcome); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if e.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if e.EndedAt, err = time.Parse(time.RFC3339Nano, ended); err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		e.Outcome = engine.Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
