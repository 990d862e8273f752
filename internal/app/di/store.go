package di

import (
	"context"
	"log/slog"

	"dashboard_backend/internal/app/config"
	"dashboard_backend/internal/platform/cache"
	platformredis "dashboard_backend/internal/platform/redis"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient はREDIS_ADDRが設定されていれば接続済みのクライアントを返します。
// 未設定または接続できない場合は nil を返し、メモリキャッシュで動作させます。
func NewRedisClient(ctx context.Context, cfg config.Config) *redis.Client {
	rc := platformredis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	if !rc.Enabled() {
		return nil
	}
	rdb, err := platformredis.NewRedisClient(ctx, rc)
	if err != nil {
		slog.Warn("Redis unavailable. Falling back to in-memory cache.", "error", err)
		return nil
	}
	return rdb
}

// NewResultStore はキャッシュを生成します。
// Redisが利用可能であればRedisバックエンド、そうでなければプロセス内メモリを使います。
func NewResultStore(rdb *redis.Client, cfg config.Config, name string, obs cache.Observer) cache.Store {
	var s cache.Store
	if rdb != nil {
		s = cache.NewRedisStore(rdb, cfg.CacheTTL, name)
	} else {
		s = cache.NewMemoryStore(cfg.CacheTTL, cache.WithMaxEntries(cfg.CacheMaxEntries))
	}
	return cache.NewInstrumentedStore(s, name, obs)
}
