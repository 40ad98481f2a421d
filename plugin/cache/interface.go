// Package cache provides the snapshot cache used to memoize graph builds.
// Values are opaque byte slices; the graph builder stores the serialized graph
// under a fixed key and relies on the TTL (or explicit invalidation) to force rebuilds.
package cache

import (
	"context"
	"time"
)

// CacheService defines the cache service interface.
type CacheService interface {
	// Get retrieves a value from cache.
	// Returns: value, whether it exists
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value in cache.
	// ttl: expiration time, zero means the backend default
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate invalidates cache entries.
	// pattern: exact key or a prefix ending in * (e.g. "sixdegrees:*")
	Invalidate(ctx context.Context, pattern string) error
}

// Backend is a CacheService owning resources that must be released.
type Backend interface {
	CacheService
	Close() error
}

// StatsReporter is implemented by backends that keep effectiveness counters.
type StatsReporter interface {
	Stats() Stats
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
}
