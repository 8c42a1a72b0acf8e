// Package store provides persistent key/value storage for shelf using SQLite.
//
// # Model
//
// The store mirrors the browser local-storage model the tracker grew out of:
// a flat key space where each value is an opaque blob rewritten in full on
// every change. Two keys are in use:
//
//   - KeyBooks ("books"): JSON array of every book on the shelf
//   - KeyProfile ("user"): JSON profile record
//
// There is no versioning and no partial update. Callers serialize their own
// documents and replace them wholesale.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode:
//
//	PRAGMA journal_mode=WAL;
//
// Database file locations:
//
//   - Default: ~/.local/share/shelf/shelf.db
//   - Testing: :memory: (in-memory database, single connection)
//
// # Error Handling
//
//   - ErrNotFound: Requested key does not exist
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewMockStore() for unit tests:
//
//	kv := store.NewMockStore()
//	kv.SetErr = errors.New("disk full") // optional failure injection
//
// Use NewSQLiteStore(":memory:") for integration tests with real SQLite.
package store
