package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/username/holiday-density/internal/holiday"
)

// FileSource implements Source using a local mirror directory:
//
//	<dir>/public/<CC>-<year>.json
//	<dir>/school/<CC>-<year>.json
//	<dir>/regions/<CC>.json
//
// Each file holds the JSON payload of the matching OpenHolidays endpoint.
type FileSource struct {
	dir    string
	logger *zap.Logger
}

// NewFileSource creates a new FileSource instance
func NewFileSource(dir string, logger *zap.Logger) *FileSource {
	return &FileSource{
		dir:    dir,
		logger: logger,
	}
}

// Dir returns the mirror directory
func (fs *FileSource) Dir() string {
	return fs.dir
}

// PublicHolidays reads the public holidays of a country and year
func (fs *FileSource) PublicHolidays(ctx context.Context, country string, year int) ([]holiday.Record, error) {
	return fs.readHolidays(holiday.KindPublic, country, year)
}

// SchoolHolidays reads the school holidays of a country and year
func (fs *FileSource) SchoolHolidays(ctx context.Context, country string, year int) ([]holiday.Record, error) {
	return fs.readHolidays(holiday.KindSchool, country, year)
}

// Regions reads the region listing of a country
func (fs *FileSource) Regions(ctx context.Context, country string) ([]holiday.Region, error) {
	var regions []holiday.Region
	if err := fs.readJSON(fs.regionsPath(country), &regions); err != nil {
		return nil, fmt.Errorf("failed to read region data of %s: %w", country, err)
	}
	return regions, nil
}

// WriteHolidays stores the records of a country and year
func (fs *FileSource) WriteHolidays(kind holiday.Kind, country string, year int, records []holiday.Record) error {
	if records == nil {
		records = []holiday.Record{}
	}
	return fs.writeJSON(fs.holidaysPath(kind, country, year), records)
}

// WriteRegions stores the region listing of a country
func (fs *FileSource) WriteRegions(country string, regions []holiday.Region) error {
	if regions == nil {
		regions = []holiday.Region{}
	}
	return fs.writeJSON(fs.regionsPath(country), regions)
}

func (fs *FileSource) readHolidays(kind holiday.Kind, country string, year int) ([]holiday.Record, error) {
	var records []holiday.Record
	if err := fs.readJSON(fs.holidaysPath(kind, country, year), &records); err != nil {
		return nil, fmt.Errorf("failed to read %s holidays of %s for %d: %w", kind, country, year, err)
	}

	fs.logger.Debug("Holidays loaded from mirror",
		zap.String("kind", kind.String()),
		zap.String("country", country),
		zap.Int("year", year),
		zap.Int("records", len(records)))

	return records, nil
}

func (fs *FileSource) holidaysPath(kind holiday.Kind, country string, year int) string {
	return filepath.Join(fs.dir, kind.String(), fmt.Sprintf("%s-%d.json", country, year))
}

func (fs *FileSource) regionsPath(country string) string {
	return filepath.Join(fs.dir, "regions", country+".json")
}

func (fs *FileSource) readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (fs *FileSource) writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fs.logger.Debug("Mirror file written", zap.String("file", path))
	return nil
}
