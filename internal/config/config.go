package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultRemovePatterns mark test and invalid survey rounds in visit names.
var DefaultRemovePatterns = []string{"test", "ongeldig", "tim"}

// Config holds all tool settings. Values come from an optional YAML file,
// overridden by environment variables, overridden again by CLI flags.
type Config struct {
	Timezone  string
	LogLevel  string
	LogFormat string
	OutputDir string

	RemovePatterns []string

	SolarFallbackOnly bool

	// Reverse geocoding configuration.
	GeocodeEnabled     bool
	GeocodeBaseURL     string
	GeocodeUserAgent   string
	GeocodeTimeout     time.Duration
	GeocodeCacheSize   int
	GeocodeMinInterval time.Duration
}

// fileConfig mirrors the YAML layout.
type fileConfig struct {
	Timezone          string   `yaml:"timezone"`
	LogLevel          string   `yaml:"log_level"`
	LogFormat         string   `yaml:"log_format"`
	OutputDir         string   `yaml:"output_dir"`
	RemovePatterns    []string `yaml:"remove_patterns"`
	SolarFallbackOnly bool     `yaml:"solar_fallback_only"`
	Geocode           struct {
		Enabled     bool   `yaml:"enabled"`
		BaseURL     string `yaml:"base_url"`
		UserAgent   string `yaml:"user_agent"`
		Timeout     string `yaml:"timeout"`
		CacheSize   int    `yaml:"cache_size"`
		MinInterval string `yaml:"min_interval"`
	} `yaml:"geocode"`
}

// Load builds the configuration: defaults, then the YAML file at path (if
// not empty), then environment variables on top.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Timezone:           "Europe/Amsterdam",
		LogLevel:           "info",
		LogFormat:          "text",
		OutputDir:          "Data_Output",
		RemovePatterns:     DefaultRemovePatterns,
		GeocodeBaseURL:     "https://nominatim.openstreetmap.org",
		GeocodeUserAgent:   "fieldwork-etl/1.0",
		GeocodeTimeout:     10 * time.Second,
		GeocodeCacheSize:   1000,
		GeocodeMinInterval: time.Second,
	}

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.GeocodeEnabled {
		if cfg.GeocodeBaseURL == "" {
			return nil, errors.New("geocoding is enabled but the base URL is empty")
		}
		if cfg.GeocodeUserAgent == "" {
			return nil, errors.New("geocoding is enabled but the user agent is empty")
		}
	}
	return cfg, nil
}

// Location resolves the configured timezone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Timezone != "" {
		c.Timezone = fc.Timezone
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		c.LogFormat = fc.LogFormat
	}
	if fc.OutputDir != "" {
		c.OutputDir = fc.OutputDir
	}
	if fc.RemovePatterns != nil {
		c.RemovePatterns = fc.RemovePatterns
	}
	c.SolarFallbackOnly = c.SolarFallbackOnly || fc.SolarFallbackOnly

	c.GeocodeEnabled = c.GeocodeEnabled || fc.Geocode.Enabled
	if fc.Geocode.BaseURL != "" {
		c.GeocodeBaseURL = fc.Geocode.BaseURL
	}
	if fc.Geocode.UserAgent != "" {
		c.GeocodeUserAgent = fc.Geocode.UserAgent
	}
	if fc.Geocode.CacheSize > 0 {
		c.GeocodeCacheSize = fc.Geocode.CacheSize
	}
	if fc.Geocode.Timeout != "" {
		d, err := time.ParseDuration(fc.Geocode.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid geocode timeout %q", fc.Geocode.Timeout)
		}
		c.GeocodeTimeout = d
	}
	if fc.Geocode.MinInterval != "" {
		d, err := time.ParseDuration(fc.Geocode.MinInterval)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid geocode min interval %q", fc.Geocode.MinInterval)
		}
		c.GeocodeMinInterval = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Timezone = envOrDefault("FIELDWORK_TIMEZONE", c.Timezone)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOrDefault("LOG_FORMAT", c.LogFormat)
	c.OutputDir = envOrDefault("FIELDWORK_OUTPUT_DIR", c.OutputDir)

	if v := os.Getenv("FIELDWORK_REMOVE_PATTERNS"); v != "" {
		c.RemovePatterns = splitList(v)
	}
	if v := os.Getenv("SOLAR_FALLBACK_ONLY"); v != "" {
		c.SolarFallbackOnly = v == "true"
	}

	if v := os.Getenv("GEOCODE_ENABLED"); v != "" {
		c.GeocodeEnabled = v == "true"
	}
	c.GeocodeBaseURL = envOrDefault("GEOCODE_BASE_URL", c.GeocodeBaseURL)
	c.GeocodeUserAgent = envOrDefault("GEOCODE_USER_AGENT", c.GeocodeUserAgent)

	if v := os.Getenv("GEOCODE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return errors.New("invalid GEOCODE_TIMEOUT")
		}
		c.GeocodeTimeout = d
	}
	if v := os.Getenv("GEOCODE_MIN_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return errors.New("invalid GEOCODE_MIN_INTERVAL")
		}
		c.GeocodeMinInterval = d
	}
	if v := os.Getenv("GEOCODE_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errors.New("invalid GEOCODE_CACHE_SIZE")
		}
		c.GeocodeCacheSize = n
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
