// Package cache holds byte-oriented key/value stores and RecordStore, which
// keeps holiday records in any of them.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for absent and expired keys.
var ErrNotFound = errors.New("cache: key not found")

// Store is a key/value store with per-key expiry. A zero ttl keeps the value
// until it is replaced or deleted.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
