package weather

import (
	"fmt"
	"time"
)

const (
	// InstantLayout is the canonical wire form of an instant, always rendered in UTC.
	InstantLayout = "2006-01-02T15:04:05.000Z07:00"
	// DayLayout is the layout of a day key.
	DayLayout = "2006-01-02"
)

// DayKey identifies a calendar day (UTC) in YYYY-MM-DD form.
type DayKey string

// DayOf derives the day key of t. Year, month and day are all taken in UTC.
func DayOf(t time.Time) DayKey {
	return DayKey(t.UTC().Format(DayLayout))
}

// ParseDay validates s as a day key.
func ParseDay(s string) (DayKey, error) {
	d, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return DayKey(d.Format(DayLayout)), nil
}

// ParseInstant parses an RFC 3339 timestamp and returns it in canonical form:
// UTC, truncated to millisecond precision.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid instant %q: %w", s, err)
	}
	return t.UTC().Truncate(time.Millisecond), nil
}

// FormatInstant renders t in canonical form, e.g. 2015-09-01T16:00:00.000Z.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(InstantLayout)
}

// IsValidInstant reports whether s is an accepted instant representation.
func IsValidInstant(s string) bool {
	_, err := ParseInstant(s)
	return err == nil
}
