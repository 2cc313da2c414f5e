// Package cache provides byte-level caching for fetched lineage graphs and
// rendered artifacts.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [MemoryCache]: bounded in-process LRU, for the server
//   - [RedisCache]: shared cache for several server replicas
//   - [MongoCache]: shared cache in a MongoDB collection with a TTL index
//
// [Open] selects a backend from [Options].
//
// # Keys
//
// A [Keyer] turns lineage queries and artifact options into keys. Layouts are
// never cached: they are cheap to recompute and must always reflect the
// current input.
//
// # Failures
//
// Callers treat cache errors as misses. A broken cache slows requests down
// but never fails them.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	GraphTTL    = time.Hour
	ArtifactTTL = 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
