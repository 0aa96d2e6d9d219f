// Package timeutil provides timezone helpers for the booking engine.
// Mentors and students live in arbitrary named zones, so all helpers work
// against the host platform's timezone database instead of a hardcoded
// offset table. No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"math"
	"sync"
	"time"
)

var (
	locMu    sync.RWMutex
	locCache = map[string]*time.Location{}
)

// LoadLocation resolves a named zone against the host tz database,
// caching the result. Safe for concurrent use.
func LoadLocation(name string) (*time.Location, error) {
	locMu.RLock()
	loc, ok := locCache[name]
	locMu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timeutil: unknown timezone %q: %w", name, err)
	}

	locMu.Lock()
	locCache[name] = loc
	locMu.Unlock()
	return loc, nil
}

// ZoneOffsetHours returns the UTC offset of the zone at the given instant,
// in hours. DST is handled by the tz database, which is why the instant
// matters.
func ZoneOffsetHours(name string, at time.Time) (float64, error) {
	loc, err := LoadLocation(name)
	if err != nil {
		return 0, err
	}
	_, offsetSeconds := at.In(loc).Zone()
	return float64(offsetSeconds) / 3600, nil
}

// ZoneOffsetDiffHours returns the absolute difference between two zones'
// UTC offsets at the given instant, in hours.
func ZoneOffsetDiffHours(a, b string, at time.Time) (float64, error) {
	offsetA, err := ZoneOffsetHours(a, at)
	if err != nil {
		return 0, err
	}
	offsetB, err := ZoneOffsetHours(b, at)
	if err != nil {
		return 0, err
	}
	return math.Abs(offsetA - offsetB), nil
}

// StartOfDay returns midnight of t's calendar date in the given location.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last nanosecond of t's calendar date in the given location.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// FormatISO formats an instant as an ISO-8601 / RFC 3339 UTC timestamp.
func FormatISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseISO parses an ISO-8601 / RFC 3339 timestamp.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: invalid ISO-8601 timestamp %q: %w", s, err)
	}
	return t, nil
}
