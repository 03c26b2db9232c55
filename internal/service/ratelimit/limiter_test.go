package ratelimit

import (
	"testing"
	"time"
)

func TestAllowConsumesBurst(t *testing.T) {
	l := New(2, 0)

	for i := 0; i < 2; i++ {
		if !l.Allow("AAPL") {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}
	if l.Allow("AAPL") {
		t.Fatal("request beyond burst was allowed")
	}
}

func TestAllowSymbolsAreIndependent(t *testing.T) {
	l := New(1, 0)

	if !l.Allow("AAPL") {
		t.Fatal("first symbol denied")
	}
	if l.Allow("AAPL") {
		t.Fatal("exhausted symbol allowed")
	}
	if !l.Allow("MSFT") {
		t.Fatal("fresh symbol denied after another symbol was exhausted")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New(1, 1)

	if !l.Allow("AAPL") {
		t.Fatal("initial token denied")
	}
	if l.Allow("AAPL") {
		t.Fatal("exhausted bucket allowed")
	}

	// Pretend the last refill happened two seconds ago.
	l.mu.Lock()
	l.buckets["AAPL"].last = time.Now().Add(-2 * time.Second)
	l.mu.Unlock()

	if !l.Allow("AAPL") {
		t.Fatal("token not refilled after elapsed time")
	}
}
