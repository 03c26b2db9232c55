package util

import "strconv"

// ParseIntDefault parses s as an int, returning def when s is empty or
// not a number. Used for optional environment overrides.
func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
