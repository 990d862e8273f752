// Package cache provides the time-boxed result cache shared by the fetchers.
//
// Values are JSON documents kept as bytes, so every reader decodes its own
// copy and callers can never mutate a cached entry in place.
package cache

import (
	"context"
	"strings"
	"time"
)

// DefaultTTL is the freshness window of a cached result.
const DefaultTTL = 60 * time.Second

// keySeparator joins BuildKey parts.
const keySeparator = "|"

// Store is a memoization layer keyed by a caller-built logical identity.
type Store interface {
	// Get returns the stored value if it is still fresh.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Put stores value under key, overwriting any prior entry.
	Put(ctx context.Context, key string, value []byte)
}

// BuildKey joins parts with "|". Keys are not normalized; callers choose
// parts that cannot collide.
func BuildKey(parts ...string) string {
	return strings.Join(parts, keySeparator)
}
