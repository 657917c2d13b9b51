// Package cache is the cache-aside layer beside the Users read path. Keys
// are logical entity identifiers; values are JSON snapshots with PII
// re-encrypted before storage. The cache is never authoritative and is never
// invalidated on write: expiry is the only staleness bound.
package cache

import (
	"context"
	"fmt"
	"time"
)

// UserKey returns the cache key for one user.
func UserKey(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// AllUsersKey caches the whole collection as a single entry.
const AllUsersKey = "users:all"

// Cache is a key-value store with per-entry expiry. Implementations return
// sentinel.ErrNotFound for a missing or expired key.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
}
