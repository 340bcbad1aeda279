// Package cache stores rendered card images and short-lived markers.
//
// Backends:
//   - [NullCache]: caches nothing, the default when no cache is configured
//   - [MemoryCache]: process-local map with expiry, for tests and single
//     instance deployments
//   - [RedisCache]: shared between bot and API instances
//
// Keys come from a [Keyer] so every backend sees the same key space. The
// same backends provide a [Guard] used to reject a second response from one
// user before it reaches the database.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL. A ttl of 0
// means the entry does not expire.
type Cache interface {
	// Get returns the value and whether it was found. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Guard hands out single-use claims on a key.
type Guard interface {
	// Acquire reports true if the caller now owns key, false if another
	// caller already holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops a claim, for example after the guarded write failed.
	Release(ctx context.Context, key string) error
}

// TTLRender is the default lifetime of a cached rendered image.
const TTLRender = 24 * time.Hour
