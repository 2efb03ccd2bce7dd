// Package sqlitestore provides a SQLite-backed implementation of the
// snapstore.Store interface, for checkpoints that must survive the
// process. The persisted rows carry the versioned record layout from
// snapstore so external tamper-evidence tooling can read and seal the
// content hashes without linking this package.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/specialistvlad/gridvm/internal/snapstore"
)

const bootstrapSQL = `
CREATE TABLE IF NOT EXISTS checkpoints (
    tick         INTEGER PRIMARY KEY,
    version      INTEGER NOT NULL,
    kind         TEXT    NOT NULL,
    payload      BLOB    NOT NULL,
    content_hash TEXT    NOT NULL,
    created_at   INTEGER NOT NULL
);
`

// Store persists checkpoint records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the checkpoint database at path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("checkpoint db path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(bootstrapSQL); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure checkpoint schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put inserts or replaces the record for its tick.
func (s *Store) Put(ctx context.Context, rec snapstore.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO checkpoints (tick, version, kind, payload, content_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(tick) DO UPDATE SET
		   version = excluded.version,
		   kind = excluded.kind,
		   payload = excluded.payload,
		   content_hash = excluded.content_hash`,
		int64(rec.Tick),
		rec.Version,
		string(rec.Kind),
		rec.Payload,
		rec.ContentHash,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("persist checkpoint at tick %d: %w", rec.Tick, err)
	}
	return nil
}

// Get returns the record for a tick.
func (s *Store) Get(ctx context.Context, tick uint64) (snapstore.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return snapstore.Record{}, false, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT version, kind, payload, content_hash FROM checkpoints WHERE tick = ?`,
		int64(tick),
	)

	rec := snapstore.Record{Tick: tick}
	var kind string
	err := row.Scan(&rec.Version, &kind, &rec.Payload, &rec.ContentHash)
	if errors.Is(err, sql.ErrNoRows) {
		return snapstore.Record{}, false, nil
	}
	if err != nil {
		return snapstore.Record{}, false, fmt.Errorf("load checkpoint at tick %d: %w", tick, err)
	}
	rec.Kind = snapstore.Kind(kind)
	return rec, true, nil
}

// Ticks returns all stored ticks in ascending order.
func (s *Store) Ticks(ctx context.Context) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT tick FROM checkpoints ORDER BY tick ASC`)
	if err != nil {
		return nil, fmt.Errorf("list checkpoint ticks: %w", err)
	}
	defer rows.Close()

	var ticks []uint64
	for rows.Next() {
		var tick int64
		if err := rows.Scan(&tick); err != nil {
			return nil, fmt.Errorf("scan checkpoint tick: %w", err)
		}
		ticks = append(ticks, uint64(tick))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoint ticks: %w", err)
	}
	return ticks, nil
}

// Delete removes the record for a tick.
func (s *Store) Delete(ctx context.Context, tick uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM checkpoints WHERE tick = ?`, int64(tick)); err != nil {
		return fmt.Errorf("delete checkpoint at tick %d: %w", tick, err)
	}
	return nil
}
