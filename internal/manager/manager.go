package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/username/holiday-density/internal/calendar"
	"github.com/username/holiday-density/internal/density"
	"github.com/username/holiday-density/internal/grid"
	"github.com/username/holiday-density/internal/holiday"
	"github.com/username/holiday-density/internal/population"
)

// ErrUnknownCountry is returned for a selected country that is not supported or has no population data
var ErrUnknownCountry = errors.New("unknown country")

// HolidaySource is the attribution of the holiday data
var HolidaySource = population.Attribution{
	Source: "OpenHolidays API",
	URL:    "https://www.openholidaysapi.org",
}

// Report is the computed holiday density of a selection
type Report struct {
	Range           density.Range                   `json:"range"`
	Countries       []string                        `json:"countries"`
	Locale          string                          `json:"locale"`
	TotalPopulation int                             `json:"total_population"`
	Days            map[string]density.DayStatistic `json:"days"`
	Months          []grid.Month                    `json:"months"`
	MissingRegions  []string                        `json:"missing_regions,omitempty"`
	Sources         []population.Attribution        `json:"sources"`
	GeneratedAt     time.Time                       `json:"generated_at"`
}

// Manager computes holiday density reports
type Manager struct {
	population *population.Store
	store      *calendar.Store
	messages   *density.Messages
	supported  map[string]bool
	logger     *zap.Logger
	now        func() time.Time

	// missing regions already reported, so each is logged once
	mu       sync.Mutex
	reported holiday.RegionSet
}

// NewManager creates a new manager. An empty supported list allows every country with population data.
func NewManager(
	pop *population.Store,
	store *calendar.Store,
	messages *density.Messages,
	supported []string,
	logger *zap.Logger,
) *Manager {
	set := make(map[string]bool, len(supported))
	for _, code := range supported {
		set[strings.ToUpper(code)] = true
	}

	return &Manager{
		population: pop,
		store:      store,
		messages:   messages,
		supported:  set,
		logger:     logger,
		now:        time.Now,
		reported:   make(holiday.RegionSet),
	}
}

// Messages returns the localized strings used for tooltips
func (m *Manager) Messages() *density.Messages {
	return m.messages
}

// Population returns the population store
func (m *Manager) Population() *population.Store {
	return m.population
}

// Store returns the holiday data store
func (m *Manager) Store() *calendar.Store {
	return m.store
}

// Countries returns the supported countries that have population data, in lexical order
func (m *Manager) Countries() []string {
	var result []string
	for _, code := range m.population.Countries() {
		if m.supports(code) {
			result = append(result, code)
		}
	}
	return result
}

func (m *Manager) supports(country string) bool {
	return len(m.supported) == 0 || m.supported[country]
}

// Select normalizes country codes, drops duplicates and rejects unknown countries
func (m *Manager) Select(countries []string) ([]string, error) {
	seen := make(map[string]bool, len(countries))
	result := make([]string, 0, len(countries))

	for _, code := range countries {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || seen[code] {
			continue
		}
		if !m.supports(code) || !m.population.Has(code) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCountry, code)
		}
		seen[code] = true
		result = append(result, code)
	}

	return result, nil
}

// Compute fetches the holiday data of the selection and computes the report.
// Any fetch failure aborts the computation.
func (m *Manager) Compute(ctx context.Context, rng density.Range, countries []string) (*Report, error) {
	selected, err := m.Select(countries)
	if err != nil {
		return nil, err
	}

	m.logger.Info("Computing holiday density",
		zap.String("range", rng.String()),
		zap.Strings("countries", selected))

	years := rng.Years()
	if err := m.store.Ensure(ctx, selected, years); err != nil {
		return nil, err
	}

	input := make([]*density.Country, 0, len(selected))
	for _, code := range selected {
		c, err := m.country(code, years)
		if err != nil {
			return nil, err
		}
		input = append(input, c)
	}

	result := density.Compute(rng, input, m.messages)
	m.reportMissing(result.MissingRegions)

	report := &Report{
		Range:           rng,
		Countries:       selected,
		Locale:          m.messages.Locale(),
		TotalPopulation: result.TotalPopulation,
		Days:            result.Days,
		Months:          grid.Build(result.Days),
		MissingRegions:  result.MissingRegions,
		Sources:         m.Sources(selected),
		GeneratedAt:     m.now().UTC(),
	}

	m.logger.Info("Holiday density computed",
		zap.Int("days", len(report.Days)),
		zap.Int("months", len(report.Months)),
		zap.Int("total_population", report.TotalPopulation))

	return report, nil
}

// country assembles the normalized holidays of one country for the given years
func (m *Manager) country(code string, years []int) (*density.Country, error) {
	regions, _ := m.population.Regions(code)
	listing, _ := m.store.Regions(code)

	c := &density.Country{
		Code:        code,
		Population:  regions,
		RegionNames: holiday.RegionNames(listing),
		Years:       make(map[int]density.YearData, len(years)),
	}

	for _, year := range years {
		public, err := m.normalize(holiday.KindPublic, code, year)
		if err != nil {
			return nil, err
		}
		school, err := m.normalize(holiday.KindSchool, code, year)
		if err != nil {
			return nil, err
		}
		c.Years[year] = density.YearData{Public: public, School: school}
	}

	return c, nil
}

// normalize converts the stored records; school holidays absorb adjacent weekends
func (m *Manager) normalize(kind holiday.Kind, country string, year int) ([]holiday.Holiday, error) {
	records, ok := m.store.Holidays(kind, country, year)
	if !ok {
		return nil, fmt.Errorf("no %s holiday data of %s for %d", kind, country, year)
	}

	holidays, err := holiday.NormalizeAll(records, kind, kind == holiday.KindSchool)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s holidays of %s for %d: %w", kind, country, year, err)
	}
	return holidays, nil
}

// reportMissing logs regions without population data the first time they show up
func (m *Manager) reportMissing(regions []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var fresh []string
	for _, code := range regions {
		if !m.reported.Has(code) {
			m.reported.Add(code)
			fresh = append(fresh, code)
		}
	}
	if len(fresh) == 0 {
		return
	}

	m.logger.Warn("Missing population data for regions",
		zap.Strings("regions", fresh))
}

// Sources lists the data attribution of a selection: holiday data first, then population statistics
func (m *Manager) Sources(countries []string) []population.Attribution {
	sources := []population.Attribution{HolidaySource}
	for _, a := range m.population.Attributions(countries) {
		if a.URL != HolidaySource.URL {
			sources = append(sources, a)
		}
	}
	return sources
}
