package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/username/holiday-density/internal/holiday"
)

// ErrNotFound is returned when a source has no data for the requested country or year
var ErrNotFound = errors.New("holiday data not found")

// Source provides raw holiday records and region listings
type Source interface {
	// PublicHolidays returns the public holidays of a country valid in the given year
	PublicHolidays(ctx context.Context, country string, year int) ([]holiday.Record, error)

	// SchoolHolidays returns the school holidays of a country valid in the given year
	SchoolHolidays(ctx context.Context, country string, year int) ([]holiday.Record, error)

	// Regions returns the subdivisions and groups of a country with localized names
	Regions(ctx context.Context, country string) ([]holiday.Region, error)
}

// Holidays dispatches to the source method matching kind
func Holidays(ctx context.Context, src Source, kind holiday.Kind, country string, year int) ([]holiday.Record, error) {
	switch kind {
	case holiday.KindPublic:
		return src.PublicHolidays(ctx, country, year)
	case holiday.KindSchool:
		return src.SchoolHolidays(ctx, country, year)
	default:
		return nil, fmt.Errorf("unknown holiday kind %d", kind)
	}
}

// Kinds lists the holiday kinds fetched per country and year
var Kinds = []holiday.Kind{holiday.KindPublic, holiday.KindSchool}
