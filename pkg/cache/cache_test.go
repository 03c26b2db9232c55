package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestKeyJoinsParts(t *testing.T) {
	got := Key("indicator:sma", "AAPL", 20)
	want := "indicator:sma:AAPL:20"
	if got != want {
		t.Fatalf("Key() = %q, want %q", got, want)
	}

	if got := Key("health"); got != "health" {
		t.Fatalf("Key() without parts = %q, want %q", got, "health")
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		Symbol string    `json:"symbol"`
		Values []float64 `json:"values"`
	}

	in := payload{Symbol: "AAPL", Values: []float64{1.5, 2.25}}
	if err := mc.Set(ctx, "k", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out payload
	if err := mc.Get(ctx, "k", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.Symbol != in.Symbol || len(out.Values) != 2 || out.Values[1] != 2.25 {
		t.Fatalf("Get returned %+v, want %+v", out, in)
	}
}

func TestMemoryCacheStringsSkipJSON(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "raw value", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var got string
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "raw value" {
		t.Fatalf("Get returned %q, want %q", got, "raw value")
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var got string
	if err := mc.Get(context.Background(), "absent", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get on absent key = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Backdate the entry instead of sleeping.
	mc.mu.Lock()
	mc.entries["k"].expireAt = time.Now().Add(-time.Second)
	mc.mu.Unlock()

	var got string
	if err := mc.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get on expired key = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "a", "1", time.Minute); err != nil {
		t.Fatalf("Set a: %v", err)
	}
	if err := mc.Set(ctx, "b", "2", time.Minute); err != nil {
		t.Fatalf("Set b: %v", err)
	}

	// Touch "a" so "b" becomes the eviction candidate.
	mc.mu.Lock()
	mc.entries["a"].accessed = time.Now()
	mc.entries["b"].accessed = time.Now().Add(-time.Hour)
	mc.mu.Unlock()

	if err := mc.Set(ctx, "c", "3", time.Minute); err != nil {
		t.Fatalf("Set c: %v", err)
	}

	var got string
	if err := mc.Get(ctx, "b", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected least recently used key evicted, Get(b) = %v", err)
	}
	if err := mc.Get(ctx, "a", &got); err != nil {
		t.Fatalf("recently used key was evicted: %v", err)
	}
}
