package grid

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/username/holiday-density/internal/density"
	"github.com/username/holiday-density/pkg/dateutil"
)

// Cell is one calendar cell; blank cells pad the first week
type Cell struct {
	Blank bool                 `json:"blank,omitempty"`
	Day   density.DayStatistic `json:"day"`
}

// Summary aggregates the days of a month
type Summary struct {
	Days         int     `json:"days"`
	MeanFraction float64 `json:"mean_fraction"`
	// WorkdayMeanFraction averages Monday to Friday only
	WorkdayMeanFraction float64   `json:"workday_mean_fraction"`
	PeakFraction        float64   `json:"peak_fraction"`
	PeakDay             time.Time `json:"peak_day"`
	OffDays             int       `json:"off_days"`
	IncompleteDays      int       `json:"incomplete_days"`
}

// Month is the calendar layout of one month
type Month struct {
	Key   string     `json:"key"`
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	// Leading is the number of blank cells before day 1 in a Monday-first week
	Leading int `json:"leading"`
	// Cells holds only the days of the month, in order
	Cells   []density.DayStatistic `json:"cells"`
	Summary Summary                `json:"summary"`
}

// GroupByMonth buckets day statistics by month key, then by day key
func GroupByMonth(days map[string]density.DayStatistic) map[string]map[string]density.DayStatistic {
	months := make(map[string]map[string]density.DayStatistic)
	for key, stat := range days {
		monthKey := dateutil.MonthKey(stat.Date)
		if months[monthKey] == nil {
			months[monthKey] = make(map[string]density.DayStatistic)
		}
		months[monthKey][key] = stat
	}
	return months
}

// Build lays out the day statistics as months in chronological order
func Build(days map[string]density.DayStatistic) []Month {
	grouped := GroupByMonth(days)

	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	months := make([]Month, 0, len(keys))
	for _, key := range keys {
		months = append(months, buildMonth(key, grouped[key]))
	}
	return months
}

func buildMonth(key string, days map[string]density.DayStatistic) Month {
	dayKeys := make([]string, 0, len(days))
	for k := range days {
		dayKeys = append(dayKeys, k)
	}
	sort.Strings(dayKeys)

	cells := make([]density.DayStatistic, 0, len(dayKeys))
	for _, k := range dayKeys {
		cells = append(cells, days[k])
	}

	first := dateutil.StartOfMonth(cells[0].Date)
	return Month{
		Key:     key,
		Year:    first.Year(),
		Month:   first.Month(),
		Leading: dateutil.MondayOffset(first),
		Cells:   cells,
		Summary: summarize(cells),
	}
}

// Weeks returns the month as rows of seven cells with leading blanks and no trailing blanks
func (m Month) Weeks() [][]Cell {
	var weeks [][]Cell
	week := make([]Cell, 0, 7)
	for i := 0; i < m.Leading; i++ {
		week = append(week, Cell{Blank: true})
	}

	for _, stat := range m.Cells {
		week = append(week, Cell{Day: stat})
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]Cell, 0, 7)
		}
	}
	if len(week) > 0 {
		weeks = append(weeks, week)
	}

	return weeks
}

func summarize(cells []density.DayStatistic) Summary {
	s := Summary{Days: len(cells)}
	if len(cells) == 0 {
		return s
	}

	fractions := make([]float64, len(cells))
	workdays := make([]float64, len(cells))
	for i, c := range cells {
		fractions[i] = c.Fraction
		if !dateutil.IsWeekend(c.Date) {
			workdays[i] = 1
		}
		if c.Off {
			s.OffDays++
		}
		if c.Incomplete {
			s.IncompleteDays++
		}
	}

	s.MeanFraction = stat.Mean(fractions, nil)
	if floats.Sum(workdays) > 0 {
		s.WorkdayMeanFraction = stat.Mean(fractions, workdays)
	}
	peak := floats.MaxIdx(fractions)
	s.PeakFraction = fractions[peak]
	s.PeakDay = cells[peak].Date

	return s
}

// Flatten returns the day keys of all months in order
func Flatten(months []Month) []string {
	var keys []string
	for _, m := range months {
		for _, c := range m.Cells {
			keys = append(keys, c.Key())
		}
	}
	return keys
}
