package dateutil

import (
	"fmt"
	"time"
)

const (
	// DayLayout is the canonical day key layout (YYYY-MM-DD)
	DayLayout = "2006-01-02"
	// MonthLayout is the canonical month key layout (YYYY-MM)
	MonthLayout = "2006-01"
)

// Date returns the civil date at midnight UTC
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the civil date of t at midnight UTC.
// The wall clock date of t is kept, its location is dropped.
func StartOfDay(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// StartOfMonth returns the first day of the month of t
func StartOfMonth(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), 1)
}

// EndOfMonth returns the last day of the month of t
func EndOfMonth(t time.Time) time.Time {
	return Date(t.Year(), t.Month()+1, 0)
}

// MondayOffset returns the position of the weekday in a Monday-first week (Monday=0, Sunday=6)
func MondayOffset(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// DaysBetween returns the number of days from a to b for civil dates
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// DayKey formats the date as YYYY-MM-DD
func DayKey(date time.Time) string {
	return date.Format(DayLayout)
}

// MonthKey formats the date as YYYY-MM
func MonthKey(date time.Time) string {
	return date.Format(MonthLayout)
}

// ParseDate parses a date string in the supported formats and truncates it to midnight
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		DayLayout,
		"02.01.2006",
		"2006-01-02T15:04:05",
		time.RFC3339,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return StartOfDay(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format: %q", dateStr)
}

// ParseMonth parses a YYYY-MM month string into the first day of that month
func ParseMonth(monthStr string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, monthStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", monthStr, err)
	}
	return t, nil
}

// Latest returns the latest of the given dates, or the zero time if none are given
func Latest(dates ...time.Time) time.Time {
	var latest time.Time
	for _, d := range dates {
		if d.After(latest) {
			latest = d
		}
	}
	return latest
}

// Today returns today's date (start of day)
func Today() time.Time {
	return StartOfDay(time.Now())
}
