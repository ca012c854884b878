package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	coord      TEXT    NOT NULL,
	fetched_at INTEGER NOT NULL,
	payload    TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_coord_fetched ON snapshots (coord, fetched_at DESC);
`

// Store persists forecast snapshots so the widget can show the last known
// readings after a restart. It implements dashboard.SnapshotSink and
// dashboard.SnapshotSource.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot schema: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveSnapshot inserts f as the newest snapshot for its coordinate.
func (s *Store) SaveSnapshot(ctx context.Context, f domain.Forecast) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("serialize forecast: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (coord, fetched_at, payload) VALUES (?, ?, ?)`,
		f.Location.Coordinate.String(), f.FetchedAt.UnixMilli(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for c, or domain.ErrNoSnapshot.
func (s *Store) LatestSnapshot(ctx context.Context, c domain.Coordinate) (domain.Forecast, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE coord = ? ORDER BY fetched_at DESC, id DESC LIMIT 1`,
		c.String(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Forecast{}, domain.ErrNoSnapshot
	}
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("query snapshot: %w", err)
	}

	var f domain.Forecast
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		return domain.Forecast{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return f, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
