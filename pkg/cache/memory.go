package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const memoryDefaultTTL = 24 * time.Hour

type memoryEntry struct {
	data     []byte
	expireAt time.Time
	accessed time.Time
}

// MemoryCache is the in-process backend. Entries are evicted least recently
// used when the cache is full; an expiry sweep runs in the background until
// Close.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	maxSize int
	janitor *time.Ticker
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:       1000,
		SweepInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		entries: make(map[string]*memoryEntry),
		maxSize: cfg.MaxSize,
		janitor: time.NewTicker(cfg.SweepInterval),
	}
	go mc.sweep()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := encodeValue(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = memoryDefaultTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, ok := mc.entries[key]; !ok && len(mc.entries) >= mc.maxSize {
		mc.evictOldest()
	}
	now := time.Now()
	mc.entries[key] = &memoryEntry{data: data, expireAt: now.Add(ttl), accessed: now}
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, ok := mc.entries[key]
	if !ok {
		return ErrCacheMiss
	}
	if time.Now().After(e.expireAt) {
		delete(mc.entries, key)
		return ErrCacheMiss
	}
	e.accessed = time.Now()
	return decodeValue(e.data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, key := range keys {
		delete(mc.entries, key)
	}
	return nil
}

// Close stops the background expiry sweep.
func (mc *MemoryCache) Close() error {
	mc.janitor.Stop()
	return nil
}

// evictOldest removes the least recently accessed entry. Callers hold mu.
func (mc *MemoryCache) evictOldest() {
	var oldestKey string
	var oldest time.Time

	for key, e := range mc.entries {
		if oldestKey == "" || e.accessed.Before(oldest) {
			oldestKey = key
			oldest = e.accessed
		}
	}
	if oldestKey != "" {
		delete(mc.entries, oldestKey)
	}
}

func (mc *MemoryCache) sweep() {
	for range mc.janitor.C {
		now := time.Now()
		mc.mu.Lock()
		for key, e := range mc.entries {
			if now.After(e.expireAt) {
				delete(mc.entries, key)
			}
		}
		mc.mu.Unlock()
	}
}

func encodeValue(value interface{}) ([]byte, error) {
	if s, ok := value.(string); ok {
		return []byte(s), nil
	}
	return json.Marshal(value)
}

func decodeValue(data []byte, dest interface{}) error {
	if sp, ok := dest.(*string); ok {
		*sp = string(data)
		return nil
	}
	return json.Unmarshal(data, dest)
}
