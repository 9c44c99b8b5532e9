// Package eventstore provides an append-only event store with pluggable
// storage backends, subscriber fan-out, snapshots, and bidirectional sync
// between stores.
//
// Events belong to exactly one aggregate stream identified by a string id.
// Within a stream events are totally ordered by append time; an event's
// index is the aggregate's version. The core treats event payloads opaquely.
//
// Basic usage:
//
//	import "github.com/all-source-os/allframe/core/eventstore"
//
//	store := eventstore.New() // in-memory backend
//	defer store.Close()
//
//	events := store.Subscribe(16)
//
//	e, _ := eventstore.NewEvent(UserCreated{Email: "user@example.com"})
//	if err := store.Append(ctx, "user-1", []eventstore.Event{e}); err != nil {
//		return err
//	}
//
// Persistent storage uses the SQLite backend (single WAL-mode file, no
// network access) or the Postgres backend:
//
//	backend, err := eventstore.NewSQLiteBackend("events.db")
//	store := eventstore.New(eventstore.WithBackend(backend))
//
// Appends are persisted first and fanned out to subscribers second; a
// backend failure therefore never leaks events to subscribers. Fan-out is
// best-effort: a subscriber whose channel is full misses events rather than
// blocking the writer.
package eventstore
