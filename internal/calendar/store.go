package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/username/holiday-density/internal/holiday"
)

const (
	defaultCacheTTL    = 24 * time.Hour
	defaultConcurrency = 8
)

// Key identifies one fetched holiday list
type Key struct {
	Kind    holiday.Kind
	Year    int
	Country string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s-%d", k.Kind, k.Country, k.Year)
}

type cachedRecords struct {
	records   []holiday.Record
	fetchedAt time.Time
}

type cachedRegions struct {
	regions   []holiday.Region
	fetchedAt time.Time
}

// Store caches the raw holiday data of a Source keyed by (kind, year, country)
type Store struct {
	source      Source
	ttl         time.Duration
	concurrency int
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.RWMutex
	holidays map[Key]*cachedRecords
	regions  map[string]*cachedRegions
}

// NewStore creates a new Store; a zero ttl keeps entries for 24 hours
func NewStore(source Source, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &Store{
		source:      source,
		ttl:         ttl,
		concurrency: defaultConcurrency,
		logger:      logger,
		now:         time.Now,
		holidays:    make(map[Key]*cachedRecords),
		regions:     make(map[string]*cachedRegions),
	}
}

// Ensure fetches every missing or expired holiday list and region listing concurrently.
// All fetches must succeed; the first failure cancels the others and is returned.
func (s *Store) Ensure(ctx context.Context, countries []string, years []int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	pending := 0
	for _, country := range countries {
		country := country
		if !s.hasRegions(country) {
			pending++
			g.Go(func() error {
				return s.fetchRegions(ctx, country)
			})
		}

		for _, year := range years {
			for _, kind := range Kinds {
				key := Key{Kind: kind, Year: year, Country: country}
				if s.has(key) {
					continue
				}
				pending++
				g.Go(func() error {
					return s.fetchHolidays(ctx, key)
				})
			}
		}
	}

	if pending == 0 {
		s.logger.Debug("Holiday data served from cache",
			zap.Strings("countries", countries),
			zap.Ints("years", years))
		return nil
	}

	s.logger.Info("Fetching holiday data",
		zap.Strings("countries", countries),
		zap.Ints("years", years),
		zap.Int("requests", pending))

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to fetch holiday data: %w", err)
	}
	return nil
}

func (s *Store) fetchHolidays(ctx context.Context, key Key) error {
	records, err := Holidays(ctx, s.source, key.Kind, key.Country, key.Year)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.holidays[key] = &cachedRecords{records: records, fetchedAt: s.now()}
	s.mu.Unlock()

	return nil
}

func (s *Store) fetchRegions(ctx context.Context, country string) error {
	regions, err := s.source.Regions(ctx, country)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.regions[country] = &cachedRegions{regions: regions, fetchedAt: s.now()}
	s.mu.Unlock()

	return nil
}

func (s *Store) fresh(fetchedAt time.Time) bool {
	return s.now().Sub(fetchedAt) < s.ttl
}

func (s *Store) has(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.holidays[key]
	return ok && s.fresh(c.fetchedAt)
}

func (s *Store) hasRegions(country string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.regions[country]
	return ok && s.fresh(c.fetchedAt)
}

// Holidays returns the cached records of a country and year
func (s *Store) Holidays(kind holiday.Kind, country string, year int) ([]holiday.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.holidays[Key{Kind: kind, Year: year, Country: country}]
	if !ok {
		return nil, false
	}
	return c.records, true
}

// Regions returns the cached region listing of a country
func (s *Store) Regions(country string) ([]holiday.Region, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.regions[country]
	if !ok {
		return nil, false
	}
	return c.regions, true
}
