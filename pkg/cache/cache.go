// Package cache stores rendered weekflow artifacts keyed by content hash.
//
// A rendered diagram depends only on the tree state (hours, names and expand
// flags), the layout parameters, the palette and the output format, so the
// same inputs always map to the same key and can be served from cache. Three
// backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under the user cache directory (CLI)
//   - [RedisCache]: a shared Redis instance (HTTP host with several replicas)
//   - [NullCache]: stores nothing (--no-cache)
//
// Keys are built by a [Keyer] so that callers never hand-assemble them.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil);
	// the error is reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is the lifetime of cached artifacts when none is configured.
const DefaultTTL = 7 * 24 * time.Hour
