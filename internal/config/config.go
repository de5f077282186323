// Package config provides configuration management for the challenge
// tracker service.
package config

import "time"

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Tracker     TrackerConfig     `mapstructure:"tracker" validate:"required"`
	Odds        OddsConfig        `mapstructure:"odds" validate:"required"`
	Feeds       FeedsConfig       `mapstructure:"feeds" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Metrics     MetricsConfig     `mapstructure:"metrics" validate:"required"`
	Health      HealthConfig      `mapstructure:"health"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// TrackerConfig governs tracker defaults and the refresh cycle.
type TrackerConfig struct {
	DefaultTotalRaces      int     `mapstructure:"default_total_races" validate:"required,gt=0"`
	DefaultMargin          float64 `mapstructure:"default_margin" validate:"required,margin"`
	RefreshIntervalSeconds int     `mapstructure:"refresh_interval_seconds" validate:"required,gt=0"`
}

// OddsConfig governs quote caching and source tie-breaking.
type OddsConfig struct {
	QuoteTTLSeconds int      `mapstructure:"quote_ttl_seconds" validate:"required,gt=0"`
	SourcePriority  []string `mapstructure:"source_priority" validate:"omitempty,sources"`
}

// FeedsConfig lists the bookmaker feeds the collector polls.
type FeedsConfig struct {
	Sources        []FeedConfig `mapstructure:"sources" validate:"required,min=1,dive"`
	TimeoutSeconds int          `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RateLimit      float64      `mapstructure:"rate_limit" validate:"required,gt=0"`
	MaxRetries     int          `mapstructure:"max_retries" validate:"gte=0"`
}

// FeedConfig is one bookmaker feed endpoint.
type FeedConfig struct {
	Name    string `mapstructure:"name" validate:"required,source"`
	URL     string `mapstructure:"url" validate:"required,url"`
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// DatabaseConfig represents database connection configuration. Only
// consulted when persistence is enabled.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// PersistenceConfig gates the optional tracker archive.
type PersistenceConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health check server configuration.
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// RefreshInterval returns the auto-refresh cadence as a duration.
func (c *TrackerConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// QuoteTTL returns the quote cache TTL as a duration.
func (c *OddsConfig) QuoteTTL() time.Duration {
	return time.Duration(c.QuoteTTLSeconds) * time.Second
}

// Timeout returns the per-source fetch timeout as a duration.
func (c *FeedsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
