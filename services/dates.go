package services

import (
	"fmt"
	"time"
)

// DateOnly truncates a timestamp to midnight UTC so calendar-day arithmetic
// is immune to timezones and DST.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole calendar days from a to b (negative when b is
// earlier). Both arguments are normalized first.
func daysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)) / (24 * time.Hour))
}

// MonthBounds returns the first day of now's month and the first day of the
// next month, the half-open range used by the ranking queries.
func MonthBounds(now time.Time) (from, to time.Time) {
	from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// combineDateTime builds a wall-clock instant from a calendar date and a local
// "HH:MM" string, in the supplied location.
func combineDateTime(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}
