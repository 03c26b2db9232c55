package util

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, ok := ParseDate(""); ok {
		t.Fatalf("expected not ok for empty")
	}
	if _, ok := ParseDate("10/10/2024"); ok {
		t.Fatalf("expected not ok for non-ISO layout")
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	got := ParseDateDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestDaysBetween(t *testing.T) {
	if d := DaysBetween("2024-10-10", "2024-10-13"); d != 3 {
		t.Fatalf("expected 3, got %d", d)
	}
	if d := DaysBetween("2024-10-13", "2024-10-10"); d != -3 {
		t.Fatalf("expected -3, got %d", d)
	}
	if d := DaysBetween("bad", "2024-10-10"); d != 0 {
		t.Fatalf("expected 0 for invalid input, got %d", d)
	}
}

func TestAddDays(t *testing.T) {
	if got := AddDays("2024-12-30", 3); got != "2025-01-02" {
		t.Fatalf("unexpected date %s", got)
	}
}
