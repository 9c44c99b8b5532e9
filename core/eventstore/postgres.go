package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS events (
	aggregate_id TEXT NOT NULL,
	version BIGINT NOT NULL,
	payload BYTEA NOT NULL,
	PRIMARY KEY (aggregate_id, version)
);
CREATE TABLE IF NOT EXISTS snapshots (
	aggregate_id TEXT PRIMARY KEY,
	payload BYTEA NOT NULL,
	version BIGINT NOT NULL
);
`

// PostgresBackend persists events in PostgreSQL through the pgx stdlib
// driver. It shares the SQLite backend's schema shape and versioning
// contract; per-aggregate writes are serialized with row-level locks so the
// version sequence stays monotonic across concurrent writers.
type PostgresBackend struct {
	db *sqlx.DB
}

// NewPostgresBackend connects to the database identified by dsn and
// prepares the schema.
func NewPostgresBackend(ctx context.Context, dsn string) (*PostgresBackend, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres database: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare postgres schema: %w", err)
	}
	return &PostgresBackend{db: db}, nil
}

// NewPostgresBackendFromDB wraps an existing connection pool. The schema is
// assumed to be in place; the caller retains ownership of the pool.
func NewPostgresBackendFromDB(db *sqlx.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// Close closes the underlying connection pool.
func (b *PostgresBackend) Close() error {
	return b.db.Close()
}

// Healthcheck returns a probe function suitable for readiness checks.
func (b *PostgresBackend) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		return b.db.PingContext(ctx)
	}
}

// Append implements Backend. The batch is written in a single transaction;
// the aggregate's existing rows are locked to serialize version assignment.
func (b *PostgresBackend) Append(ctx context.Context, aggregateID string, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var count int64
	if err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM (
			SELECT 1 FROM events WHERE aggregate_id = $1 FOR UPDATE
		) locked`, aggregateID); err != nil {
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
			"INSERT INTO events (aggregate_id, version, payload) VALUES ($1, $2, $3)",
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
func (b *PostgresBackend) GetEvents(ctx context.Context, aggregateID string) ([]Event, error) {
	return b.queryEvents(ctx,
		"SELECT aggregate_id, version, payload FROM events WHERE aggregate_id = $1 ORDER BY version",
		aggregateID)
}

// GetAllEvents implements Backend.
func (b *PostgresBackend) GetAllEvents(ctx context.Context) ([]Event, error) {
	return b.queryEvents(ctx,
		"SELECT aggregate_id, version, payload FROM events ORDER BY aggregate_id, version")
}

// GetEventsAfter implements Backend.
func (b *PostgresBackend) GetEventsAfter(ctx context.Context, aggregateID string, version uint64) ([]Event, error) {
	return b.queryEvents(ctx,
		"SELECT aggregate_id, version, payload FROM events WHERE aggregate_id = $1 AND version >= $2 ORDER BY version",
		aggregateID, version)
}

func (b *PostgresBackend) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
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
		e.AggregateID = aggregateID
		e.Version = version
		events = append(events, e)
	}
	return events, rows.Err()
}

// SaveSnapshot implements Backend.
func (b *PostgresBackend) SaveSnapshot(ctx context.Context, aggregateID string, state []byte, version uint64) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO snapshots (aggregate_id, payload, version) VALUES ($1, $2, $3)
		ON CONFLICT (aggregate_id) DO UPDATE SET payload = excluded.payload, version = excluded.version`,
		aggregateID, state, version)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// GetLatestSnapshot implements Backend.
func (b *PostgresBackend) GetLatestSnapshot(ctx context.Context, aggregateID string) (Snapshot, error) {
	var row struct {
		Payload []byte `db:"payload"`
		Version uint64 `db:"version"`
	}
	err := b.db.GetContext(ctx, &row,
		"SELECT payload, version FROM snapshots WHERE aggregate_id = $1", aggregateID)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return Snapshot{State: row.Payload, Version: row.Version}, nil
}

// Flush implements Backend. Postgres commits are durable at transaction
// boundaries already.
func (b *PostgresBackend) Flush(ctx context.Context) error {
	return nil
}

// Stats implements Backend.
func (b *PostgresBackend) Stats(ctx context.Context) (Stats, error) {
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
	stats.BackendSpecific = map[string]string{"backend_type": "postgres"}
	return stats, nil
}
