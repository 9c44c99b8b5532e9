package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
	aggregate_id TEXT NOT NULL,
	version INTEGER NOT NULL,
	payload BLOB NOT NULL,
	PRIMARY KEY (aggregate_id, version)
);
CREATE TABLE IF NOT EXISTS snapshots (
	aggregate_id TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	version INTEGER NOT NULL
);
`

// SQLiteBackend persists events in a single self-contained SQLite file
// opened in write-ahead-logging mode, so readers proceed concurrently with
// writes. Appends run inside one transaction; Flush checkpoints the WAL.
type SQLiteBackend struct {
	db *sqlx.DB

	// Serializes writers per backend: SQLite allows one writer at a time
	// and the per-aggregate version sequence must stay monotonic.
	writeMu sync.Mutex
}

// NewSQLiteBackend opens (creating if needed) the database file at path and
// prepares the schema. The file requires no network access.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure sqlite database: %w", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare sqlite schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

// Close closes the underlying database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// Append implements Backend. The batch is written in a single transaction.
func (b *SQLiteBackend) Append(ctx context.Context, aggregateID string, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var count int64
	if err := tx.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM events WHERE aggregate_id = ?", aggregateID); err != nil {
		return fmt.Errorf("read stream version: %w", err)
	}
	base := uint64(count)

	for i, e := range events {
		e.AggregateID = aggregateID
		e.Version = base + uint64(i)

		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", e.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO events (aggregate_id, version, payload) VALUES (?, ?, ?)",
			aggregateID, e.Version, payload); err != nil {
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// GetEvents implements Backend.
func (b *SQLiteBackend) GetEvents(ctx context.Context, aggregateID string) ([]Event, error) {
	return b.queryEvents(ctx,
		"SELECT aggregate_id, version, payload FROM events WHERE aggregate_id = ? ORDER BY version",
		aggregateID)
}

// GetAllEvents implements Backend.
func (b *SQLiteBackend) GetAllEvents(ctx context.Context) ([]Event, error) {
	return b.queryEvents(ctx,
		"SELECT aggregate_id, version, payload FROM events ORDER BY aggregate_id, version")
}

// GetEventsAfter implements Backend.
func (b *SQLiteBackend) GetEventsAfter(ctx context.Context, aggregateID string, version uint64) ([]Event, error) {
	return b.queryEvents(ctx,
		"SELECT aggregate_id, version, payload FROM events WHERE aggregate_id = ? AND version >= ? ORDER BY version",
		aggregateID, version)
}

func (b *SQLiteBackend) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := b.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			aggregateID string
			version     uint64
			payload     []byte
		)
		if err := rows.Scan(&aggregateID, &version, &payload); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		var e Event
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("unmarshal event payload: %w", err)
		}
		// Columns are authoritative for stream position.
		e.AggregateID = aggregateID
		e.Version = version
		events = append(events, e)
	}
	return events, rows.Err()
}

// SaveSnapshot implements Backend. The latest snapshot per aggregate wins.
func (b *SQLiteBackend) SaveSnapshot(ctx context.Context, aggregateID string, state []byte, version uint64) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	_, err := b.db.ExecContext(ctx, `
		INSERT INTO snapshots (aggregate_id, payload, version) VALUES (?, ?, ?)
		ON CONFLICT (aggregate_id) DO UPDATE SET payload = excluded.payload, version = excluded.version`,
		aggregateID, state, version)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// GetLatestSnapshot implements Backend.
func (b *SQLiteBackend) GetLatestSnapshot(ctx context.Context, aggregateID string) (Snapshot, error) {
	var row struct {
		Payload []byte `db:"payload"`
		Version uint64 `db:"version"`
	}
	err := b.db.GetContext(ctx, &row,
		"SELECT payload, version FROM snapshots WHERE aggregate_id = ?", aggregateID)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return Snapshot{State: row.Payload, Version: row.Version}, nil
}

// Flush implements Backend by checkpointing the write-ahead log.
func (b *SQLiteBackend) Flush(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpoint WAL: %w", err)
	}
	return nil
}

// Stats implements Backend.
func (b *SQLiteBackend) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := b.db.GetContext(ctx, &stats.TotalEvents, "SELECT COUNT(*) FROM events"); err != nil {
		return Stats{}, fmt.Errorf("count events: %w", err)
	}
	if err := b.db.GetContext(ctx, &stats.TotalAggregates,
		"SELECT COUNT(DISTINCT aggregate_id) FROM events"); err != nil {
		return Stats{}, fmt.Errorf("count aggregates: %w", err)
	}
	if err := b.db.GetContext(ctx, &stats.TotalSnapshots, "SELECT COUNT(*) FROM snapshots"); err != nil {
		return Stats{}, fmt.Errorf("count snapshots: %w", err)
	}

	stats.BackendSpecific = map[string]string{"backend_type": "sqlite"}
	var pageCount int64
	if err := b.db.GetContext(ctx, &pageCount, "PRAGMA page_count"); err == nil {
		stats.BackendSpecific["page_count"] = strconv.FormatInt(pageCount, 10)
	}
	return stats, nil
}
