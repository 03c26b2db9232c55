package indicators

import (
	"context"
	"encoding/json"
	"time"

	"StockCast/pkg/cache"
)

// Memoizer caches indicator output keyed by (series identity, indicator,
// period). The identity is supplied by the caller, not derived from process
// state, so the functions stay referentially transparent and testable.
type Memoizer struct {
	cache cache.Service
	ttl   time.Duration
}

// NewMemoizer wraps a cache backend. A zero ttl falls back to one hour.
func NewMemoizer(c cache.Service, ttl time.Duration) *Memoizer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Memoizer{cache: c, ttl: ttl}
}

func (m *Memoizer) cached(ctx context.Context, key string, compute func() []float64) []float64 {
	if m == nil || m.cache == nil {
		return compute()
	}
	var raw string
	if err := m.cache.Get(ctx, key, &raw); err == nil {
		var out []float64
		if json.Unmarshal([]byte(raw), &out) == nil {
			return out
		}
	}
	out := compute()
	if b, err := json.Marshal(out); err == nil {
		_ = m.cache.Set(ctx, key, string(b), m.ttl)
	}
	return out
}

// Returns memoizes Returns for the series identified by seriesID.
func (m *Memoizer) Returns(ctx context.Context, seriesID string, prices []float64) []float64 {
	key := cache.Key("indicator:returns", seriesID, len(prices))
	return m.cached(ctx, key, func() []float64 { return Returns(prices) })
}

// SMA memoizes SMA for the series identified by seriesID.
func (m *Memoizer) SMA(ctx context.Context, seriesID string, values []float64, period int) []float64 {
	key := cache.Key("indicator:sma", seriesID, period, len(values))
	return m.cached(ctx, key, func() []float64 { return SMA(values, period) })
}

// RSI memoizes RSI for the series identified by seriesID.
func (m *Memoizer) RSI(ctx context.Context, seriesID string, prices []float64, period int) []float64 {
	key := cache.Key("indicator:rsi", seriesID, period, len(prices))
	return m.cached(ctx, key, func() []float64 { return RSI(prices, period) })
}
