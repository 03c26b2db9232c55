package ratelimit

import (
	"sync"
	"time"
)

// Limiter throttles expensive per-symbol operations with a token
// bucket per symbol. All buckets share one capacity and refill rate,
// fixed at construction. Buckets are created lazily and never evicted;
// the symbol set is small and bounded.
type Limiter struct {
	capacity float64
	refill   float64 // tokens per second

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

// New creates a limiter whose buckets start full at capacity and
// regain refillPerSec tokens each second.
func New(capacity, refillPerSec float64) *Limiter {
	return &Limiter{
		capacity: capacity,
		refill:   refillPerSec,
		buckets:  make(map[string]*bucket),
	}
}

// Allow consumes one token for symbol, reporting whether one was
// available.
func (l *Limiter) Allow(symbol string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[symbol]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.buckets[symbol] = b
	}

	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = minFloat(b.tokens+elapsed*l.refill, l.capacity)
		b.last = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
