package density

import (
	"sort"
	"time"

	"github.com/username/holiday-density/internal/holiday"
	"github.com/username/holiday-density/pkg/dateutil"
)

// IncompleteThreshold is the population share without holiday data at which a day is flagged incomplete
const IncompleteThreshold = 0.05

// DayStatistic is the holiday density of one day across all selected countries
type DayStatistic struct {
	Date       time.Time `json:"date"`
	Fraction   float64   `json:"fraction"`
	Off        bool      `json:"off"`
	Incomplete bool      `json:"incomplete"`
	Tooltip    string    `json:"tooltip"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Key returns the canonical day key
func (s DayStatistic) Key() string {
	return dateutil.DayKey(s.Date)
}

// Breakdown carries the data the tooltip is rendered from
type Breakdown struct {
	HolidayPopulation    int                `json:"holiday_population"`
	TotalPopulation      int                `json:"total_population"`
	Countries            []CountryBreakdown `json:"countries,omitempty"`
	IncompletePopulation int                `json:"incomplete_population"`
	// IncompleteSources names the countries, or countries with their regions, lacking data
	IncompleteSources []string `json:"incomplete_sources,omitempty"`
}

// CountryBreakdown is the holiday population of one country on one day
type CountryBreakdown struct {
	Country           string      `json:"country"`
	Name              string      `json:"name"`
	HolidayPopulation int         `json:"holiday_population"`
	Population        int         `json:"population"`
	Labels            []LabelLine `json:"labels,omitempty"`
}

// LabelLine is one holiday label with its kind and the regions it covers
type LabelLine struct {
	Label      string       `json:"label"`
	Kind       holiday.Kind `json:"kind"`
	Nationwide bool         `json:"nationwide"`
	// Regions are display names in lexical order
	Regions []string `json:"regions,omitempty"`
}

// Result is the holiday density of every day in a range
type Result struct {
	Range           Range                   `json:"range"`
	Days            map[string]DayStatistic `json:"days"`
	MissingRegions  []string                `json:"missing_regions,omitempty"`
	TotalPopulation int                     `json:"total_population"`
}

// Compute aggregates the countries over the range and reduces every day
func Compute(rng Range, countries []*Country, msgs *Messages) *Result {
	agg := Aggregate(rng, countries)

	result := &Result{
		Range:           rng,
		Days:            make(map[string]DayStatistic, rng.Len()),
		MissingRegions:  agg.MissingRegions.Sorted(),
		TotalPopulation: totalPopulation(countries),
	}

	for _, day := range rng.Days() {
		result.Days[dateutil.DayKey(day)] = Reduce(day, countries, agg, msgs)
	}

	return result
}

func totalPopulation(countries []*Country) int {
	total := 0
	for _, c := range countries {
		total += c.Total()
	}
	return total
}

// Reduce combines the per-country state of day into one DayStatistic.
// A country with nationwide coverage of any kind that day is never counted as incomplete.
func Reduce(day time.Time, countries []*Country, agg *Aggregation, msgs *Messages) DayStatistic {
	day = dateutil.StartOfDay(day)
	stat := DayStatistic{
		Date: day,
		Off:  day.Weekday() == time.Sunday,
	}

	b := Breakdown{TotalPopulation: totalPopulation(countries)}
	states := agg.Day(day)

	for ci, c := range countries {
		cd := newCountryDay()
		if states != nil {
			cd = states[ci]
		}
		cov := agg.Coverage[ci][day.Year()]
		total := c.Total()

		holidayPop := 0
		if cd.Nationwide {
			holidayPop = total
		} else {
			for region := range cd.Regions {
				holidayPop += c.Population[region]
			}
		}
		b.HolidayPopulation += holidayPop
		if cd.NationalPublicHoliday {
			stat.Off = true
		}

		if !cd.Nationwide {
			pop, source := incomplete(day, c, cd, cov, msgs)
			if source != "" {
				b.IncompletePopulation += pop
				b.IncompleteSources = append(b.IncompleteSources, source)
			}
		}

		if holidayPop > 0 {
			b.Countries = append(b.Countries, CountryBreakdown{
				Country:           c.Code,
				Name:              msgs.CountryName(c.Code),
				HolidayPopulation: holidayPop,
				Population:        total,
				Labels:            labelLines(c, cd),
			})
		}
	}

	if b.TotalPopulation > 0 {
		stat.Fraction = float64(b.HolidayPopulation) / float64(b.TotalPopulation)
		stat.Incomplete = float64(b.IncompletePopulation)/float64(b.TotalPopulation) >= IncompleteThreshold
	}
	stat.Breakdown = b
	stat.Tooltip = FormatTooltip(b, len(countries) > 1, msgs)

	return stat
}

// incomplete returns the population lacking data and its attribution, or "" when nothing is missing
func incomplete(day time.Time, c *Country, cd *CountryDay, cov Coverage, msgs *Messages) (int, string) {
	name := msgs.CountryName(c.Code)
	if cov.CountryIncomplete(day) {
		return c.Total(), name
	}

	pop := 0
	var names []string
	for _, region := range c.Population.Codes() {
		if cd.Regions.Has(region) || !cov.RegionIncomplete(region, day) {
			continue
		}
		pop += c.Population[region]
		names = append(names, c.RegionName(region))
	}
	if len(names) == 0 {
		return 0, ""
	}

	return pop, name + " (" + joinNames(names) + ")"
}

func labelLines(c *Country, cd *CountryDay) []LabelLine {
	var lines []LabelLine
	for _, lc := range cd.Labels {
		if !lc.Nationwide && len(lc.Regions) == 0 {
			continue
		}

		line := LabelLine{Label: lc.Key.Label, Kind: lc.Key.Kind, Nationwide: lc.Nationwide}
		if !lc.Nationwide {
			for region := range lc.Regions {
				line.Regions = append(line.Regions, c.RegionName(region))
			}
			sort.Strings(line.Regions)
		}
		lines = append(lines, line)
	}
	return lines
}
