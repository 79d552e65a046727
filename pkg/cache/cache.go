// Package cache provides pluggable byte caches for registry responses.
//
// Four backends are available:
//   - FileCache: per-user on-disk cache for CLI usage
//   - NullCache: no-op cache for tests or --refresh runs
//   - RedisCache: shared cache for multi-instance server deployments
//   - MongoCache: shared cache with TTL indexes, for deployments that
//     already run MongoDB
//
// All backends store opaque byte slices under string keys with an optional
// time-to-live. Keys are namespaced by the caller (e.g., "pypi:mkdocs").
package cache

import (
	"context"
	"time"
)

// Cache is the backend interface for byte caches.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found
	// and fresh; expired or missing entries return (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources (connections, file handles).
	Close() error
}
