package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/holiday-density/internal/holiday"
	"github.com/username/holiday-density/pkg/random"
)

const (
	// DefaultBaseURL is the public OpenHolidays API endpoint
	DefaultBaseURL     = "https://openholidaysapi.org"
	defaultHTTPTimeout = 10 * time.Second
	defaultRetries     = 3
	defaultRetryDelay  = time.Second
	maxRetryDelay      = 10 * time.Second
	retryJitterPercent = 20
)

// OpenHolidaysConfig configures the OpenHolidays API client
type OpenHolidaysConfig struct {
	BaseURL    string
	Language   string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

// OpenHolidaysSource implements Source using the OpenHolidays API
type OpenHolidaysSource struct {
	baseURL    string
	language   string
	retries    int
	retryDelay time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// statusError is a non-2xx response
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.code, e.body)
}

// NewOpenHolidaysSource creates a new OpenHolidaysSource instance
func NewOpenHolidaysSource(cfg OpenHolidaysConfig, logger *zap.Logger) *OpenHolidaysSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if cfg.Retries <= 0 {
		cfg.Retries = defaultRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.Language == "" {
		cfg.Language = "DE"
	}

	return &OpenHolidaysSource{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   strings.ToUpper(cfg.Language),
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// PublicHolidays fetches /PublicHolidays for the calendar year
func (s *OpenHolidaysSource) PublicHolidays(ctx context.Context, country string, year int) ([]holiday.Record, error) {
	records, err := s.fetchHolidays(ctx, "/PublicHolidays", country, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load public holidays of %s for %d: %w", country, year, err)
	}
	return records, nil
}

// SchoolHolidays fetches /SchoolHolidays for the calendar year
func (s *OpenHolidaysSource) SchoolHolidays(ctx context.Context, country string, year int) ([]holiday.Record, error) {
	records, err := s.fetchHolidays(ctx, "/SchoolHolidays", country, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load school holidays of %s for %d: %w", country, year, err)
	}
	return records, nil
}

// Regions fetches /Subdivisions and /Groups and returns both lists concatenated
func (s *OpenHolidaysSource) Regions(ctx context.Context, country string) ([]holiday.Region, error) {
	query := url.Values{}
	query.Set("countryIsoCode", country)
	query.Set("languageIsoCode", s.language)

	var subdivisions, groups []holiday.Region
	if err := s.getJSON(ctx, "/Subdivisions", query, &subdivisions); err != nil {
		return nil, fmt.Errorf("failed to load region data of %s: %w", country, err)
	}
	if err := s.getJSON(ctx, "/Groups", query, &groups); err != nil {
		return nil, fmt.Errorf("failed to load region data of %s: %w", country, err)
	}

	s.logger.Info("Regions fetched from API",
		zap.String("country", country),
		zap.Int("subdivisions", len(subdivisions)),
		zap.Int("groups", len(groups)))

	return append(subdivisions, groups...), nil
}

func (s *OpenHolidaysSource) fetchHolidays(ctx context.Context, path, country string, year int) ([]holiday.Record, error) {
	query := url.Values{}
	query.Set("countryIsoCode", country)
	query.Set("validFrom", fmt.Sprintf("%d-01-01", year))
	query.Set("validTo", fmt.Sprintf("%d-12-31", year))
	query.Set("languageIsoCode", s.language)

	var records []holiday.Record
	if err := s.getJSON(ctx, path, query, &records); err != nil {
		return nil, err
	}

	s.logger.Info("Holidays fetched from API",
		zap.String("path", path),
		zap.String("country", country),
		zap.Int("year", year),
		zap.Int("records", len(records)))

	return records, nil
}

// getJSON performs a GET request with retries on transport errors and 5xx responses
func (s *OpenHolidaysSource) getJSON(ctx context.Context, path string, query url.Values, result interface{}) error {
	u := s.baseURL + path + "?" + query.Encode()

	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		err := s.getJSONOnce(ctx, u, result)
		if err == nil {
			return nil
		}

		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			return err
		}

		s.logger.Warn("Request failed, retrying",
			zap.String("url", u),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", s.retries),
			zap.Error(err))

		if attempt < s.retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(random.Backoff(attempt, s.retryDelay, maxRetryDelay, retryJitterPercent)):
			}
		}
	}

	return fmt.Errorf("request failed after %d attempts: %w", s.retries, lastErr)
}

func (s *OpenHolidaysSource) getJSONOnce(ctx context.Context, u string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("Fetching from OpenHolidays API", zap.String("url", u))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, body: string(body)}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

func retryable(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	// transport and decode errors
	return true
}
