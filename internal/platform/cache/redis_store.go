package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis. Freshness is enforced by the key TTL.
// Redis failures are logged and treated as misses so the fetchers keep
// working against the upstream.
type RedisStore struct {
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore.
// If ttl is 0, it defaults to DefaultTTL. If namespace is empty, it uses "results".
func NewRedisStore(rdb *redis.Client, ttl time.Duration, namespace string) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "results"
	}
	return &RedisStore{
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Get retrieves a fresh value from Redis.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := s.rdb.Get(ctx, s.cacheKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("redis cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	if len(b) == 0 {
		return nil, false
	}
	return b, true
}

// Put stores value with the store TTL (best effort).
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) {
	if err := s.rdb.Set(ctx, s.cacheKey(key), value, s.ttl).Err(); err != nil {
		slog.Warn("redis cache set failed", "key", key, "error", err)
	}
}

// cacheKey prefixes the logical key with the namespace.
func (s *RedisStore) cacheKey(key string) string {
	return s.namespace + ":" + key
}
