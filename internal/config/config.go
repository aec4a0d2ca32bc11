package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultCountries are the countries the calendar supports out of the box
var DefaultCountries = []string{"DE", "AT", "CH", "FR", "LU", "BE", "NL", "CZ", "PL"}

// Config represents application configuration
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Locale     string           `mapstructure:"locale"`
	Population PopulationConfig `mapstructure:"population"`
	Selection  SelectionConfig  `mapstructure:"selection"`
	Countries  []string         `mapstructure:"countries"`
	Fallback   FallbackConfig   `mapstructure:"fallback"`
	Output     OutputConfig     `mapstructure:"output"`
	Daemon     DaemonConfig     `mapstructure:"daemon"`
	Log        LogConfig        `mapstructure:"log"`
}

// APIConfig represents OpenHolidays API configuration
type APIConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Timeout  string `mapstructure:"timeout"`
	Retries  int    `mapstructure:"retries"`
	CacheTTL string `mapstructure:"cache_ttl"`
}

// PopulationConfig points to the population dataset (.json or .csv)
type PopulationConfig struct {
	File string `mapstructure:"file"`
}

// SelectionConfig represents the default selection of countries and range
type SelectionConfig struct {
	Countries []string `mapstructure:"countries"`
	Range     string   `mapstructure:"range"` // "YYYY-MM~YYYY-MM", empty for the current calendar or school year
}

// FallbackConfig represents the sources used when the API fails
type FallbackConfig struct {
	OfflinePublicHolidays bool   `mapstructure:"offline_public_holidays"`
	MirrorDir             string `mapstructure:"mirror_dir"`
}

// OutputConfig represents snapshot output configuration
type OutputConfig struct {
	File string `mapstructure:"file"`
}

// DaemonConfig represents daemon mode configuration
type DaemonConfig struct {
	Interval string `mapstructure:"interval"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from file and HOLIDAY_DENSITY_* environment variables.
// Without an explicit path a missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.holiday-density")
		v.AddConfigPath("/etc/holiday-density")
	}

	// Read environment variables
	v.SetEnvPrefix("HOLIDAY_DENSITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()
	config.normalize()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://openholidaysapi.org")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.retries", 3)
	v.SetDefault("api.cache_ttl", "24h")
	v.SetDefault("locale", "de")
	v.SetDefault("population.file", "population.json")
	v.SetDefault("selection.countries", []string{"DE"})
	v.SetDefault("countries", DefaultCountries)
	v.SetDefault("output.file", "holiday-density.json")
	v.SetDefault("daemon.interval", "6h")
	v.SetDefault("log.level", "info")
}

func (c *Config) normalize() {
	c.Locale = strings.ToLower(strings.TrimSpace(c.Locale))
	c.Countries = upper(c.Countries)
	c.Selection.Countries = upper(c.Selection.Countries)
}

func upper(codes []string) []string {
	result := make([]string, 0, len(codes))
	for _, code := range codes {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			result = append(result, code)
		}
	}
	return result
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Retries < 0 {
		return fmt.Errorf("api.retries must not be negative")
	}
	for key, value := range map[string]string{
		"api.timeout":     c.API.Timeout,
		"api.cache_ttl":   c.API.CacheTTL,
		"daemon.interval": c.Daemon.Interval,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s is not a valid duration: %w", key, err)
		}
	}

	if c.Locale != "de" && c.Locale != "en" {
		return fmt.Errorf("locale must be 'de' or 'en', got '%s'", c.Locale)
	}

	if c.Population.File == "" {
		return fmt.Errorf("population.file is required")
	}

	if len(c.Countries) == 0 {
		return fmt.Errorf("countries must list at least one country")
	}
	for _, code := range c.Selection.Countries {
		if !c.Supports(code) {
			return fmt.Errorf("selection.countries: %s is not in countries", code)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got '%s'", c.Log.Level)
	}

	return nil
}

// Supports reports whether the country is in the supported list
func (c *Config) Supports(country string) bool {
	for _, code := range c.Countries {
		if code == country {
			return true
		}
	}
	return false
}

// GetTimeout returns the HTTP timeout duration
func (c *APIConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

// GetCacheTTL returns cache TTL duration
func (c *APIConfig) GetCacheTTL() time.Duration {
	return parseDuration(c.CacheTTL, 24*time.Hour)
}

// GetInterval returns daemon refresh interval duration
func (c *DaemonConfig) GetInterval() time.Duration {
	return parseDuration(c.Interval, 6*time.Hour)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

// ExpandEnvVars expands environment variables in config paths
func (c *Config) ExpandEnvVars() {
	c.Population.File = os.ExpandEnv(c.Population.File)
	c.Fallback.MirrorDir = os.ExpandEnv(c.Fallback.MirrorDir)
	c.Output.File = os.ExpandEnv(c.Output.File)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
