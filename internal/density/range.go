package density

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/username/holiday-density/pkg/dateutil"
)

// ErrInvalidRange is returned for unparseable, reversed or too long ranges
var ErrInvalidRange = errors.New("invalid date range")

// MaxSpanDays limits the distance between the first days of the two boundary months
const MaxSpanDays = 2 * 365

// RangeSeparator separates the two months of a range string
const RangeSeparator = "~"

// Range is an inclusive, month-aligned span of civil days
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewRange snaps from to the first day of its month and to to the last day of its month
func NewRange(from, to time.Time) (Range, error) {
	fromMonth := dateutil.StartOfMonth(from)
	toMonth := dateutil.StartOfMonth(to)

	if toMonth.Before(fromMonth) {
		return Range{}, fmt.Errorf("%w %s: end before start", ErrInvalidRange, formatRange(fromMonth, toMonth))
	}
	if dateutil.DaysBetween(fromMonth, toMonth) > MaxSpanDays {
		return Range{}, fmt.Errorf("%w %s: span exceeds two years", ErrInvalidRange, formatRange(fromMonth, toMonth))
	}

	return Range{From: fromMonth, To: dateutil.EndOfMonth(toMonth)}, nil
}

// ParseRange parses "YYYY-MM~YYYY-MM"
func ParseRange(s string) (Range, error) {
	parts := strings.Split(strings.TrimSpace(s), RangeSeparator)
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("%w %q: expected YYYY-MM%sYYYY-MM", ErrInvalidRange, s, RangeSeparator)
	}

	from, err := dateutil.ParseMonth(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("%w %q: %v", ErrInvalidRange, s, err)
	}
	to, err := dateutil.ParseMonth(parts[1])
	if err != nil {
		return Range{}, fmt.Errorf("%w %q: %v", ErrInvalidRange, s, err)
	}

	return NewRange(from, to)
}

// MustParseRange is like ParseRange but panics on error
func MustParseRange(s string) Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the range in its "YYYY-MM~YYYY-MM" form
func (r Range) String() string {
	return formatRange(r.From, r.To)
}

func formatRange(from, to time.Time) string {
	return dateutil.MonthKey(from) + RangeSeparator + dateutil.MonthKey(to)
}

// Len returns the number of days in the range
func (r Range) Len() int {
	return dateutil.DaysBetween(r.From, r.To) + 1
}

// Contains reports whether the day lies within the range
func (r Range) Contains(day time.Time) bool {
	day = dateutil.StartOfDay(day)
	return !day.Before(r.From) && !day.After(r.To)
}

// Years returns every calendar year touched by the range
func (r Range) Years() []int {
	years := make([]int, 0, r.To.Year()-r.From.Year()+1)
	for y := r.From.Year(); y <= r.To.Year(); y++ {
		years = append(years, y)
	}
	return years
}

// Days returns every day of the range in order
func (r Range) Days() []time.Time {
	days := make([]time.Time, 0, r.Len())
	for d := r.From; !d.After(r.To); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// clampYear returns the part of the range within the given calendar year
func (r Range) clampYear(year int) (time.Time, time.Time) {
	from := dateutil.Latest(r.From, dateutil.Date(year, time.January, 1))
	to := dateutil.Date(year, time.December, 31)
	if r.To.Before(to) {
		to = r.To
	}
	return from, to
}

// DefaultRange returns the calendar year before July and the school year (July to June) afterwards
func DefaultRange(now time.Time) Range {
	year := now.Year()
	if now.Month() < time.July {
		return calendarYear(year)
	}
	return schoolYear(year)
}

// Preset is a selectable range with its short label ("2025" or "2025/26")
type Preset struct {
	Label string
	Range Range
}

// PresetRanges returns calendar and school year ranges from last year up to two years ahead
func PresetRanges(now time.Time) []Preset {
	var presets []Preset
	for y := now.Year() - 1; y <= now.Year()+2; y++ {
		presets = append(presets,
			Preset{Label: fmt.Sprintf("%d", y), Range: calendarYear(y)},
			Preset{Label: fmt.Sprintf("%d/%02d", y, (y+1)%100), Range: schoolYear(y)},
		)
	}
	return presets
}

func calendarYear(year int) Range {
	return Range{From: dateutil.Date(year, time.January, 1), To: dateutil.Date(year, time.December, 31)}
}

func schoolYear(year int) Range {
	return Range{From: dateutil.Date(year, time.July, 1), To: dateutil.Date(year+1, time.June, 30)}
}
