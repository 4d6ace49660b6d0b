// Package timebucket maps calendar dates to canonical week and month bucket keys.
package timebucket

import (
	"fmt"
	"strings"
	"time"
)

// Key layouts.
const (
	// DayLayout formats week keys and daily labels.
	DayLayout = "2006-01-02"
	// MonthLayout formats month keys as MM-YYYY.
	MonthLayout = "01-2006"
	// DateTimeLayout is accepted for record dates that carry a time of day.
	DateTimeLayout = "2006-01-02 15:04:05"
)

// daysPerWeek is the offset applied to Sunday so it falls into the previous week.
const daysPerWeek = 7

// layouts lists the accepted date string forms, most common first.
var layouts = []string{ //nolint:gochecknoglobals // read-only parse table
	DayLayout,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	DateTimeLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate parses a record date string in loc. A nil loc means UTC.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Midnight truncates t to 00:00:00 in its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart returns the Monday of the week containing t, at midnight.
// Sunday belongs to the week that started six days earlier.
func WeekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = daysPerWeek
	}
	return time.Date(t.Year(), t.Month(), t.Day()-(weekday-1), 0, 0, 0, 0, t.Location())
}

// MonthStart returns the first day of the month containing t, at midnight.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// WeekKey returns the YYYY-MM-DD label of the week start containing t.
func WeekKey(t time.Time) string {
	return WeekStart(t).Format(DayLayout)
}

// MonthKey returns the MM-YYYY label of the month containing t.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// CompareDates orders two instants: -1 when a is earlier, 1 when later, 0 when equal.
func CompareDates(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
