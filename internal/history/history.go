// Package history keeps a log of finished boils in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Record is one finished boil.
type Record struct {
	ID         int64
	SessionID  string
	Duration   time.Duration
	StartedAt  time.Time
	FinishedAt time.Time
}

// Stats summarises all recorded boils.
type Stats struct {
	Count   int
	Total   time.Duration
	Average time.Duration
}

// Store is a SQLite-backed boil log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// A single connection keeps ":memory:" databases consistent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history: %w", err)
	}

	s := &Store{db: db}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initTables() error {
	_, err := s.db.Exec(`
        CREATE TABLE IF NOT EXISTS boils (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            session_id TEXT NOT NULL,
            duration_seconds INTEGER NOT NULL,
            started_at DATETIME NOT NULL,
            finished_at DATETIME NOT NULL
        )
    `)
	if err != nil {
		return fmt.Errorf("create boils table: %w", err)
	}
	return nil
}

// Add stores a record and sets its ID.
func (s *Store) Add(ctx context.Context, r *Record) error {
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO boils (session_id, duration_seconds, started_at, finished_at)
        VALUES (?, ?, ?, ?)
    `, r.SessionID, int64(r.Duration/time.Second), r.StartedAt.UTC(), r.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert boil: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("boil id: %w", err)
	}
	r.ID = id
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, session_id, duration_seconds, started_at, finished_at
        FROM boils
        ORDER BY finished_at DESC, id DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("query boils: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var secs int64
		if err := rows.Scan(&r.ID, &r.SessionID, &secs, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan boil: %w", err)
		}
		r.Duration = time.Duration(secs) * time.Second
		records = append(records, r)
	}
	return records, rows.Err()
}

// Stats returns totals across all records.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var total int64
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(*), COALESCE(SUM(duration_seconds), 0)
        FROM boils
    `).Scan(&st.Count, &total)
	if err != nil {
		return st, fmt.Errorf("boil stats: %w", err)
	}
	st.Total = time.Duration(total) * time.Second
	if st.Count > 0 {
		st.Average = st.Total / time.Duration(st.Count)
	}
	return st, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
