package util

import (
	"time"
)

// ISODate is the calendar-day layout all quote series are keyed by.
const ISODate = "2006-01-02"

// ParseDate parses an ISO YYYY-MM-DD calendar date. Returns (t, true) if it worked.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDateDefault parses a date or returns default if empty/invalid.
func ParseDateDefault(s string, def time.Time) time.Time {
	if t, ok := ParseDate(s); ok {
		return t
	}
	return def
}

// FormatDate renders t as ISO YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(ISODate)
}

// DaysBetween returns the number of calendar days from a to b.
// Both must be ISO dates; invalid input yields 0.
func DaysBetween(a, b string) int {
	ta, ok := ParseDate(a)
	if !ok {
		return 0
	}
	tb, ok := ParseDate(b)
	if !ok {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// AddDays returns the ISO date n calendar days after s.
func AddDays(s string, n int) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return FormatDate(t.AddDate(0, 0, n))
}
