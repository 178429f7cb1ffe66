package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the vibelink service.
// Environment variables are automatically parsed from the VIBELINK_ prefix.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage Configuration
	DBDriver    string `envconfig:"DB_DRIVER" default:"memory"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"vibelink.db"`

	// Geo index Configuration
	GeoIndexDriver string `envconfig:"GEO_INDEX_DRIVER" default:"memory"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD" default:""`

	// Query defaults
	DefaultRadiusMeters float64 `envconfig:"DEFAULT_RADIUS_METERS" default:"5000"`
	DefaultGridMeters   float64 `envconfig:"DEFAULT_GRID_METERS" default:"500"`
	DefaultPageSize     int     `envconfig:"DEFAULT_PAGE_SIZE" default:"10"`

	// Moment lifecycle
	MomentTTL      time.Duration `envconfig:"MOMENT_TTL" default:"24h"`
	ReaperInterval time.Duration `envconfig:"REAPER_INTERVAL" default:"1m"`

	// Optional reverse geocoder for cluster labels, e.g. a Nominatim base URL.
	// Empty disables labelling.
	GeocoderURL string `envconfig:"GEOCODER_URL" default:""`
}

// ResolveDefaults validates driver selections and query defaults.
func (c *Config) ResolveDefaults() error {
	allowedDB := map[string]bool{"memory": true, "sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("DB_DRIVER postgres requires POSTGRES_DSN")
	}

	allowedGeo := map[string]bool{"memory": true, "redis": true}
	if !allowedGeo[c.GeoIndexDriver] {
		return fmt.Errorf("unsupported GEO_INDEX_DRIVER: %s", c.GeoIndexDriver)
	}

	if c.DefaultRadiusMeters <= 0 {
		return fmt.Errorf("DEFAULT_RADIUS_METERS must be positive, got %v", c.DefaultRadiusMeters)
	}
	if c.DefaultGridMeters <= 0 {
		return fmt.Errorf("DEFAULT_GRID_METERS must be positive, got %v", c.DefaultGridMeters)
	}
	if c.DefaultPageSize <= 0 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", c.DefaultPageSize)
	}
	if c.MomentTTL <= 0 {
		return fmt.Errorf("MOMENT_TTL must be positive, got %v", c.MomentTTL)
	}
	if c.ReaperInterval <= 0 {
		return fmt.Errorf("REAPER_INTERVAL must be positive, got %v", c.ReaperInterval)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with VIBELINK_.
// Example: VIBELINK_HTTP_PORT, VIBELINK_DB_DRIVER
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("VIBELINK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("geo_index_driver", cfg.GeoIndexDriver).
		Int("port", cfg.HTTPPort).
		Float64("default_radius_m", cfg.DefaultRadiusMeters).
		Float64("default_grid_m", cfg.DefaultGridMeters).
		Int("default_page_size", cfg.DefaultPageSize).
		Dur("moment_ttl", cfg.MomentTTL).
		Dur("reaper_interval", cfg.ReaperInterval).
		Bool("geocoder_enabled", cfg.GeocoderURL != "").
		Msg("Configuration loaded")

	return &cfg, nil
}
