package cache

import "time"

// RedisOption configures the Redis backend.
type RedisOption func(*RedisConfig)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	PoolTimeout  time.Duration
	MinIdleConns int
	Prefix       string
}

func WithRedisHost(host string) RedisOption {
	return func(c *RedisConfig) { c.Host = host }
}

func WithRedisPort(port int) RedisOption {
	return func(c *RedisConfig) { c.Port = port }
}

func WithRedisPassword(password string) RedisOption {
	return func(c *RedisConfig) { c.Password = password }
}

func WithRedisDB(db int) RedisOption {
	return func(c *RedisConfig) { c.DB = db }
}

func WithRedisPool(poolSize, minIdleConns int, timeout time.Duration) RedisOption {
	return func(c *RedisConfig) {
		c.PoolSize = poolSize
		c.MinIdleConns = minIdleConns
		c.PoolTimeout = timeout
	}
}

// WithRedisPrefix sets the key namespace.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) { c.Prefix = prefix }
}

// MemoryOption configures the in-process backend.
type MemoryOption func(*MemoryConfig)

// MemoryConfig holds in-process cache settings.
type MemoryConfig struct {
	MaxSize       int
	SweepInterval time.Duration
}

func WithMemoryMaxSize(size int) MemoryOption {
	return func(c *MemoryConfig) { c.MaxSize = size }
}

func WithMemorySweep(interval time.Duration) MemoryOption {
	return func(c *MemoryConfig) { c.SweepInterval = interval }
}

// LayeredOption configures the memory-over-Redis cache.
type LayeredOption func(*LayeredConfig)

// LayeredConfig holds layered cache settings.
type LayeredConfig struct {
	MemoryMaxSize int
}

func WithLayeredMemorySize(size int) LayeredOption {
	return func(c *LayeredConfig) { c.MemoryMaxSize = size }
}
