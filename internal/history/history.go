// Package history keeps snapshots of extracted metadata records in SQLite
// so that counters such as views and likes can be compared over time.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"vidmeta/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	video_id   TEXT NOT NULL,
	url        TEXT NOT NULL,
	fetched_at INTEGER NOT NULL,
	record     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_video ON snapshots(video_id, fetched_at);
`

// Snapshot is one stored extraction result.
type Snapshot struct {
	ID        string
	VideoID   string
	URL       string
	FetchedAt time.Time
	Record    media.Record
}

// Store is a snapshot database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the snapshot database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	// A single connection keeps pragmas and writes on one handle.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores rec as a new snapshot of the video named by id.
func (s *Store) Save(ctx context.Context, id media.Identifier, rec media.Record) (Snapshot, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encoding record: %w", err)
	}

	snap := Snapshot{
		ID:        uuid.NewString(),
		VideoID:   id.ID,
		URL:       id.URL,
		FetchedAt: s.now().UTC(),
		Record:    rec,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, video_id, url, fetched_at, record) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.VideoID, snap.URL, snap.FetchedAt.UnixNano(), string(data))
	if err != nil {
		return Snapshot{}, fmt.Errorf("saving snapshot: %w", err)
	}
	return snap, nil
}

// List returns snapshots newest first. An empty videoID lists every video.
// limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, videoID string, limit int) ([]Snapshot, error) {
	query := `SELECT id, video_id, url, fetched_at, record FROM snapshots`
	var args []any
	if videoID != "" {
		query += ` WHERE video_id = ?`
		args = append(args, videoID)
	}
	query += ` ORDER BY fetched_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var (
			snap    Snapshot
			fetched int64
			data    string
		)
		if err := rows.Scan(&snap.ID, &snap.VideoID, &snap.URL, &fetched, &data); err != nil {
			return nil, fmt.Errorf("reading snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &snap.Record); err != nil {
			return nil, fmt.Errorf("decoding snapshot %s: %w", snap.ID, err)
		}
		snap.FetchedAt = time.Unix(0, fetched).UTC()
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshots: %w", err)
	}
	return snaps, nil
}

// Remove deletes every snapshot of videoID and reports how many were removed.
func (s *Store) Remove(ctx context.Context, videoID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE video_id = ?`, videoID)
	if err != nil {
		return 0, fmt.Errorf("removing snapshots: %w", err)
	}
	return res.RowsAffected()
}
