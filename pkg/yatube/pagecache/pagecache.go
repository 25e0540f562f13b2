// Package pagecache caches rendered listing pages in Redis for a fixed
// duration. A write to the underlying data does not invalidate entries;
// readers may see a stale page until the TTL runs out or the cache is
// cleared explicitly.
package pagecache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "page:"

// Store is a read-through cache for rendered page bodies, keyed by
// request path. A nil client disables caching: every Get misses and Set
// is a no-op, so the application keeps working without Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Store writing entries with the given TTL.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Get returns the cached body for key, reporting whether it was found.
// Errors are treated as misses; the cache is best-effort.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if s.client == nil {
		return nil, false
	}
	body, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

// Set stores body under key with the configured TTL. Best-effort: a
// failed write just means the next request rebuilds the page.
func (s *Store) Set(ctx context.Context, key string, body []byte) {
	if s.client == nil {
		return
	}
	s.client.Set(ctx, keyPrefix+key, body, s.ttl)
}

// Delete removes a single cached page.
func (s *Store) Delete(ctx context.Context, key string) {
	if s.client == nil {
		return
	}
	s.client.Del(ctx, keyPrefix+key)
}

// Clear drops every cached page.
func (s *Store) Clear(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	keys, err := s.client.Keys(ctx, keyPrefix+"*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
