package density

import (
	"time"

	"github.com/username/holiday-density/internal/holiday"
	"github.com/username/holiday-density/internal/population"
	"github.com/username/holiday-density/pkg/dateutil"
)

// YearData holds the normalized holidays of one country for one calendar year
type YearData struct {
	Public []holiday.Holiday
	School []holiday.Holiday
}

// Country is a selected country with everything the aggregation reads
type Country struct {
	Code        string
	Population  population.Regions
	RegionNames map[string]string
	Years       map[int]YearData
}

// Total returns the population of the country
func (c *Country) Total() int {
	return c.Population.Total()
}

// RegionName returns the display name of a region, or its code
func (c *Country) RegionName(code string) string {
	if name, ok := c.RegionNames[code]; ok && name != "" {
		return name
	}
	return code
}

// LabelKey groups holidays of one day by label text and kind
type LabelKey struct {
	Label string
	Kind  holiday.Kind
}

// LabelCoverage is the merged coverage of all holidays sharing a LabelKey on one day
type LabelCoverage struct {
	Key        LabelKey
	Nationwide bool
	Regions    holiday.RegionSet
}

// CountryDay is the holiday state of one country on one day
type CountryDay struct {
	// Nationwide is set by any nationwide holiday, public or school
	Nationwide            bool
	NationalPublicHoliday bool
	Regions               holiday.RegionSet
	// Labels in order of first sighting
	Labels []*LabelCoverage

	index map[LabelKey]int
}

func newCountryDay() *CountryDay {
	return &CountryDay{
		Regions: make(holiday.RegionSet),
		index:   make(map[LabelKey]int),
	}
}

// label returns the coverage entry of key, creating it on first sighting
func (cd *CountryDay) label(key LabelKey) *LabelCoverage {
	if i, ok := cd.index[key]; ok {
		return cd.Labels[i]
	}
	lc := &LabelCoverage{Key: key, Regions: make(holiday.RegionSet)}
	cd.index[key] = len(cd.Labels)
	cd.Labels = append(cd.Labels, lc)
	return lc
}

// Coverage describes how far the school holiday data of a country reaches in one year
type Coverage struct {
	// MissingAll is set when the year has no public or no school holiday records
	MissingAll bool
	// Until is the latest published end of any school holiday
	Until time.Time
	// RegionUntil is the latest published end of school holidays that are nationwide or list the region
	RegionUntil map[string]time.Time
}

// CountryIncomplete reports whether the whole country lacks data on day
func (c Coverage) CountryIncomplete(day time.Time) bool {
	return c.MissingAll || day.After(c.Until)
}

// RegionIncomplete reports whether the region lacks school holiday data on day
func (c Coverage) RegionIncomplete(region string, day time.Time) bool {
	until, ok := c.RegionUntil[region]
	return !ok || day.After(until)
}

func coverageOf(c *Country, data YearData) Coverage {
	cov := Coverage{
		MissingAll:  len(data.Public) == 0 || len(data.School) == 0,
		RegionUntil: make(map[string]time.Time),
	}

	for _, h := range data.School {
		cov.Until = dateutil.Latest(cov.Until, h.LastDay)
		for region := range c.Population {
			if h.Nationwide || h.Regions.Has(region) {
				cov.RegionUntil[region] = dateutil.Latest(cov.RegionUntil[region], h.LastDay)
			}
		}
	}

	return cov
}

// Aggregation is the per-day, per-country holiday state of a range
type Aggregation struct {
	Range Range
	// Days is indexed by day offset from Range.From, then by country position
	Days [][]*CountryDay
	// Coverage is indexed by country position, then by year
	Coverage []map[int]Coverage
	// MissingRegions lists holiday regions without population data; they are never counted
	MissingRegions holiday.RegionSet
}

// Day returns the per-country state of day, nil outside the range
func (a *Aggregation) Day(day time.Time) []*CountryDay {
	if !a.Range.Contains(day) {
		return nil
	}
	return a.Days[dateutil.DaysBetween(a.Range.From, day)]
}

// Aggregate marks every day of the range with the holidays of each country.
// The holidays of a year only apply to the days of that year.
func Aggregate(rng Range, countries []*Country) *Aggregation {
	agg := &Aggregation{
		Range:          rng,
		Days:           make([][]*CountryDay, rng.Len()),
		Coverage:       make([]map[int]Coverage, len(countries)),
		MissingRegions: make(holiday.RegionSet),
	}

	for i := range agg.Days {
		agg.Days[i] = make([]*CountryDay, len(countries))
		for ci := range countries {
			agg.Days[i][ci] = newCountryDay()
		}
	}

	for ci, c := range countries {
		agg.Coverage[ci] = make(map[int]Coverage)
		for _, year := range rng.Years() {
			data := c.Years[year]
			agg.Coverage[ci][year] = coverageOf(c, data)

			from, to := rng.clampYear(year)
			for _, h := range data.Public {
				agg.apply(ci, c, h, from, to)
			}
			for _, h := range data.School {
				agg.apply(ci, c, h, from, to)
			}
		}
	}

	return agg
}

func (a *Aggregation) apply(ci int, c *Country, h holiday.Holiday, from, to time.Time) {
	start := dateutil.Latest(h.Start, from)
	end := h.End
	if to.Before(end) {
		end = to
	}

	key := LabelKey{Label: h.Label, Kind: h.Kind}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		cd := a.Days[dateutil.DaysBetween(a.Range.From, d)][ci]
		lc := cd.label(key)

		if h.Nationwide {
			cd.Nationwide = true
			lc.Nationwide = true
			if h.Kind == holiday.KindPublic {
				cd.NationalPublicHoliday = true
			}
			continue
		}

		for region := range h.Regions {
			if !c.Population.Has(region) {
				a.MissingRegions.Add(region)
				continue
			}
			lc.Regions.Add(region)
			cd.Regions.Add(region)
		}
	}
}
