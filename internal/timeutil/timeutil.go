// Package timeutil parses the timestamp formats observed in the NDW feed
// and in stored history rows.
package timeutil

import (
	"strings"
	"time"
)

// The feed nominally uses RFC 3339, but older records and stored rows use
// a few bare variants. Tried in order.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse parses a best-effort timestamp string. Returns a zero time and
// false when no known layout matches.
func Parse(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseIn is like Parse but interprets layouts without an explicit offset
// in the given location.
func ParseIn(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
