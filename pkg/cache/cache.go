// Package cache stores pipeline results: extracted architectures, laid-out
// documents and rendered artifacts.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer] so every entry point derives the same key for the
// same input.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
// A TTL of zero means the entry never expires.
type Cache interface {
	// Get returns the cached data and whether the key was present.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLs per entry type. Extraction is the expensive, non-deterministic
// stage, so it is kept longest.
const (
	TTLArchitecture = 7 * 24 * time.Hour
	TTLDocument     = 24 * time.Hour
	TTLArtifact     = 24 * time.Hour
)
