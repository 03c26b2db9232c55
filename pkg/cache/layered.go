package cache

import (
	"context"
	"time"
)

// LayeredCache fronts Redis with a small in-process layer so repeated
// indicator lookups within one pipeline run stay off the network.
type LayeredCache struct {
	mem   *MemoryCache
	redis *RedisCache
}

// NewLayeredCache creates a memory-over-Redis cache.
func NewLayeredCache(redisCache *RedisCache, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{MemoryMaxSize: 1000}
	for _, opt := range opts {
		opt(cfg)
	}
	return &LayeredCache{
		mem:   NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		redis: redisCache,
	}
}

// Set writes through: Redis first, then memory on success.
func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := lc.redis.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	_ = lc.mem.Set(ctx, key, value, ttl)
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.mem.Get(ctx, key, dest); err == nil {
		return nil
	}

	var raw string
	if err := lc.redis.Get(ctx, key, &raw); err != nil {
		return err
	}
	_ = lc.mem.Set(ctx, key, raw, 0)
	return decodeValue([]byte(raw), dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.mem.Delete(ctx, keys...)
	return lc.redis.Delete(ctx, keys...)
}

// Close closes both layers.
func (lc *LayeredCache) Close() error {
	_ = lc.mem.Close()
	return lc.redis.Close()
}
