package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by KVStore implementations when a key is absent
// or its TTL has elapsed. Callers cannot distinguish the two cases.
var ErrNotFound = errors.New("key not found")

// KVStore is the shared external key-value store holding nonce records,
// tier cache entries and rate counters. All atomicity guarantees the auth
// pipeline relies on come from the implementation.
type KVStore interface {
	// Get retrieves a value, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value with a TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// GetDelete atomically retrieves and removes a value, or ErrNotFound.
	// This is the single-operation nonce consume: two concurrent callers
	// can never both observe the same value.
	GetDelete(ctx context.Context, key string) (string, error)

	// Increment increments a fixed-window counter and returns the new count.
	// The window TTL is armed when absent and never extended, so the window
	// is fixed rather than sliding.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}
