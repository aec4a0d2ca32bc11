package calendar

import (
	"context"
	"fmt"
	"sort"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/at"
	"github.com/rickar/cal/v2/be"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/pl"
	"go.uber.org/zap"

	"github.com/username/holiday-density/internal/holiday"
	"github.com/username/holiday-density/pkg/dateutil"
)

// offlineHolidays are the national public holidays known without network access
var offlineHolidays = map[string][]*cal.Holiday{
	"AT": at.Holidays,
	"BE": be.Holidays,
	"DE": de.Holidays,
	"FR": fr.Holidays,
	"NL": nl.Holidays,
	"PL": pl.Holidays,
}

// OfflineSource implements Source with computed national public holidays.
// It knows no school holidays and no regions, so days it serves are reported as incomplete.
type OfflineSource struct {
	logger *zap.Logger
}

// NewOfflineSource creates a new OfflineSource instance
func NewOfflineSource(logger *zap.Logger) *OfflineSource {
	return &OfflineSource{logger: logger}
}

// OfflineCountries returns the countries OfflineSource can compute
func OfflineCountries() []string {
	countries := make([]string, 0, len(offlineHolidays))
	for c := range offlineHolidays {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	return countries
}

// PublicHolidays computes the nationwide public holidays of the year
func (o *OfflineSource) PublicHolidays(ctx context.Context, country string, year int) ([]holiday.Record, error) {
	holidays, ok := offlineHolidays[country]
	if !ok {
		return nil, fmt.Errorf("%w: no offline calendar for %s", ErrNotFound, country)
	}

	records := make([]holiday.Record, 0, len(holidays))
	for _, h := range holidays {
		actual, _ := h.Calc(year)
		if actual.IsZero() {
			continue
		}

		day := dateutil.DayKey(actual)
		records = append(records, holiday.Record{
			ID:         fmt.Sprintf("offline-%s-%s", country, day),
			StartDate:  day,
			EndDate:    day,
			Type:       "Public",
			Name:       []holiday.LocalizedText{{Text: h.Name}},
			Nationwide: true,
		})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].StartDate < records[j].StartDate })

	o.logger.Debug("Public holidays computed offline",
		zap.String("country", country),
		zap.Int("year", year),
		zap.Int("records", len(records)))

	return records, nil
}

// SchoolHolidays returns no records
func (o *OfflineSource) SchoolHolidays(ctx context.Context, country string, year int) ([]holiday.Record, error) {
	return []holiday.Record{}, nil
}

// Regions returns no regions
func (o *OfflineSource) Regions(ctx context.Context, country string) ([]holiday.Region, error) {
	return []holiday.Region{}, nil
}
