// Package memory implements cache.Store in process on top of ttlcache.
package memory

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/adeilh/vacation/cache"
)

// Store is safe for concurrent use. Call Close to stop the expiry loop.
type Store struct {
	items *ttlcache.Cache[string, []byte]
}

// NewStore starts a store; capacity 0 means unbounded.
func NewStore(capacity uint64) *Store {
	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](capacity))
	}
	items := ttlcache.New[string, []byte](opts...)
	go items.Start()
	return &Store{items: items}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	item := s.items.Get(key)
	if item == nil {
		return nil, cache.ErrNotFound
	}
	return append([]byte(nil), item.Value()...), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	s.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.items.Has(key) {
		return cache.ErrNotFound
	}
	s.items.Delete(key)
	return nil
}

// Len reports the number of live entries.
func (s *Store) Len() int { return s.items.Len() }

// Close stops the background expiry loop.
func (s *Store) Close() error {
	s.items.Stop()
	return nil
}
