package trade

import (
	"math"
	"time"
)

var (
	minTimestamp = time.Unix(0, math.MinInt64).UTC()
	maxTimestamp = time.Unix(0, math.MaxInt64).UTC()
)

// Date returns the UTC instant for the given calendar date and time of day.
func Date(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
}

// Normalize converts t to UTC and strips the monotonic clock reading so that
// equal instants compare equal and encode identically.
func Normalize(t time.Time) time.Time {
	return t.UTC().Round(0)
}

// InRange reports whether t is representable as int64 Unix nanoseconds.
func InRange(t time.Time) bool {
	return !t.Before(minTimestamp) && !t.After(maxTimestamp)
}

// ToUnixNano converts a normalized timestamp to its wire form.
func ToUnixNano(t time.Time) int64 {
	return t.UnixNano()
}

// FromUnixNano converts a wire timestamp back to a normalized time.
func FromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
