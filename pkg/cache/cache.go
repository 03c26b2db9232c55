package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Service is the cache surface the indicator memoizer depends on. Values
// round-trip through JSON except plain strings, which are stored as-is.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// Key joins a prefix and its parts into a colon-separated cache key.
func Key(prefix string, parts ...interface{}) string {
	key := prefix
	for _, p := range parts {
		key = fmt.Sprintf("%s:%v", key, p)
	}
	return key
}
