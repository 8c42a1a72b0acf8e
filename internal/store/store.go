// ABOUTME: Key/value store interface and sentinel errors for shelf persistence
// ABOUTME: Values are opaque byte blobs; callers own their serialization

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested key does not exist
var ErrNotFound = errors.New("not found")

// Well-known keys. Each holds one JSON document that is rewritten wholesale.
const (
	KeyBooks   = "books" // JSON array of library books
	KeyProfile = "user"  // JSON profile record
)

// KV is a flat key/value space with whole-value replacement semantics.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store
	Close() error
}
