package holiday

import (
	"fmt"
	"time"

	"github.com/username/holiday-density/pkg/dateutil"
)

// Normalize converts a raw record into a Holiday.
// With adjacentWeekends the range is widened to the weekend bracketing it:
// a start on Sunday or Monday moves back to the preceding Saturday, an end on
// Friday or Saturday moves forward to Sunday.
func Normalize(rec Record, kind Kind, adjacentWeekends bool) (Holiday, error) {
	start, err := dateutil.ParseDate(rec.StartDate)
	if err != nil {
		return Holiday{}, fmt.Errorf("holiday %q (%s): invalid start date: %w", rec.ID, rec.Label(), err)
	}
	end, err := dateutil.ParseDate(rec.EndDate)
	if err != nil {
		return Holiday{}, fmt.Errorf("holiday %q (%s): invalid end date: %w", rec.ID, rec.Label(), err)
	}
	if end.Before(start) {
		return Holiday{}, fmt.Errorf("holiday %q (%s): end date %s before start date %s",
			rec.ID, rec.Label(), rec.EndDate, rec.StartDate)
	}

	h := Holiday{
		ID:         rec.ID,
		Label:      rec.Label(),
		Kind:       kind,
		Start:      start,
		End:        end,
		LastDay:    end,
		Nationwide: rec.Nationwide,
		Regions:    make(RegionSet),
	}

	if adjacentWeekends {
		h.Start, h.End = expandToWeekend(start, end)
	}

	for _, r := range rec.Subdivisions {
		if r.Code != "" {
			h.Regions.Add(RegionPrefix(r.Code))
		}
	}
	for _, r := range rec.Groups {
		if r.Code != "" {
			h.Regions.Add(RegionPrefix(r.Code))
		}
	}

	return h, nil
}

// NormalizeAll normalizes a list of records of one kind
func NormalizeAll(records []Record, kind Kind, adjacentWeekends bool) ([]Holiday, error) {
	holidays := make([]Holiday, 0, len(records))
	for _, rec := range records {
		h, err := Normalize(rec, kind, adjacentWeekends)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, nil
}

func expandToWeekend(start, end time.Time) (time.Time, time.Time) {
	switch start.Weekday() {
	case time.Sunday:
		start = start.AddDate(0, 0, -1)
	case time.Monday:
		start = start.AddDate(0, 0, -2)
	}

	switch end.Weekday() {
	case time.Friday:
		end = end.AddDate(0, 0, 2)
	case time.Saturday:
		end = end.AddDate(0, 0, 1)
	}

	return start, end
}
