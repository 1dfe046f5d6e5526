// Package history keeps a local record of played podcasts in sqlite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	track_id         TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	creator          TEXT NOT NULL DEFAULT '',
	category         TEXT NOT NULL DEFAULT '',
	played_at        TEXT NOT NULL,
	seconds_listened REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_history_played_at ON history(played_at DESC);
`

// Entry is one listening-history record. Replaying a track updates its
// entry rather than adding another row.
type Entry struct {
	TrackID         string
	Title           string
	Creator         string
	Category        string
	PlayedAt        time.Time
	SecondsListened float64
}

// Store is the sqlite-backed history store.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record inserts or updates the entry for a track.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.PlayedAt.IsZero() {
		e.PlayedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (track_id, title, creator, category, played_at, seconds_listened)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(track_id) DO UPDATE SET
			title = excluded.title,
			creator = excluded.creator,
			category = excluded.category,
			played_at = excluded.played_at,
			seconds_listened = excluded.seconds_listened`,
		e.TrackID, e.Title, e.Creator, e.Category, e.PlayedAt.UTC().Format(time.RFC3339), e.SecondsListened)
	if err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT track_id, title, creator, category, played_at, seconds_listened
		FROM history ORDER BY played_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var playedAt string
		if err := rows.Scan(&e.TrackID, &e.Title, &e.Creator, &e.Category, &playedAt, &e.SecondsListened); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, playedAt); err == nil {
			e.PlayedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes all history entries.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
