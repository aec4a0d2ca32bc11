package calendar

import (
	"context"

	"go.uber.org/zap"

	"github.com/username/holiday-density/internal/holiday"
)

// CompositeSource implements Source with fallback strategy
// Primary: OpenHolidaysSource (API)
// Fallback: FileSource (mirror) or OfflineSource
type CompositeSource struct {
	primary  Source
	fallback Source
	logger   *zap.Logger
}

// NewCompositeSource creates a new CompositeSource
func NewCompositeSource(primary, fallback Source, logger *zap.Logger) *CompositeSource {
	return &CompositeSource{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// PublicHolidays returns the public holidays of the primary source, or of the fallback on error
func (cs *CompositeSource) PublicHolidays(ctx context.Context, country string, year int) ([]holiday.Record, error) {
	records, err := cs.primary.PublicHolidays(ctx, country, year)
	if err == nil {
		return records, nil
	}

	cs.logger.Warn("Primary source failed, falling back",
		zap.String("kind", holiday.KindPublic.String()),
		zap.String("country", country),
		zap.Int("year", year),
		zap.Error(err))

	return cs.fallback.PublicHolidays(ctx, country, year)
}

// SchoolHolidays returns the school holidays of the primary source, or of the fallback on error
func (cs *CompositeSource) SchoolHolidays(ctx context.Context, country string, year int) ([]holiday.Record, error) {
	records, err := cs.primary.SchoolHolidays(ctx, country, year)
	if err == nil {
		return records, nil
	}

	cs.logger.Warn("Primary source failed, falling back",
		zap.String("kind", holiday.KindSchool.String()),
		zap.String("country", country),
		zap.Int("year", year),
		zap.Error(err))

	return cs.fallback.SchoolHolidays(ctx, country, year)
}

// Regions returns the regions of the primary source, or of the fallback on error
func (cs *CompositeSource) Regions(ctx context.Context, country string) ([]holiday.Region, error) {
	regions, err := cs.primary.Regions(ctx, country)
	if err == nil {
		return regions, nil
	}

	cs.logger.Warn("Primary source failed, falling back",
		zap.String("country", country),
		zap.Error(err))

	return cs.fallback.Regions(ctx, country)
}
