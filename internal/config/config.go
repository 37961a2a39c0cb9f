// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the registry configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported database drivers.
var supportedDrivers = []string{"sqlite", "sqlite3"}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"SERVREG_DB_PATH" envDefault:"./data/servreg.db"`
	DBDriver   string `env:"SERVREG_DB_DRIVER" envDefault:"sqlite"`
	ServerHost string `env:"SERVREG_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"SERVREG_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"SERVREG_ENV" envDefault:"development"`
	LogLevel   string `env:"SERVREG_LOG_LEVEL" envDefault:"info"`

	// Languages is the fallback order of text lookups; the first one is
	// the default language.
	Languages []string `env:"SERVREG_LANGUAGES" envSeparator:"," envDefault:"fi,sv,en"`
	// MissingText replaces text that exists in no language.
	MissingText string `env:"SERVREG_MISSING_TEXT"`

	// Cache configuration
	RedisURL     string        `env:"SERVREG_REDIS_URL"`                          // Optional Redis URL for distributed caching
	CachePrefix  string        `env:"SERVREG_CACHE_PREFIX" envDefault:"servreg:"` // Redis key prefix
	CacheTTL     time.Duration `env:"SERVREG_CACHE_TTL" envDefault:"10m"`         // Read model TTL
	CacheMaxSize int           `env:"SERVREG_CACHE_MAX_SIZE" envDefault:"10000"`  // Max memory cache entries

	// HTTP configuration
	RequestTimeout  time.Duration `env:"SERVREG_REQUEST_TIMEOUT" envDefault:"30s"`
	RateLimitRPS    float64       `env:"SERVREG_RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst  int           `env:"SERVREG_RATE_LIMIT_BURST" envDefault:"40"`
	HealthDetails   bool          `env:"SERVREG_HEALTH_DETAILS" envDefault:"false"` // Expose checks on /health
	ShutdownTimeout time.Duration `env:"SERVREG_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Scheduler configuration
	PublishSchedule string        `env:"SERVREG_PUBLISH_SCHEDULE" envDefault:"* * * * *"`
	PruneSchedule   string        `env:"SERVREG_PRUNE_SCHEDULE" envDefault:"@daily"`
	EventRetention  time.Duration `env:"SERVREG_EVENT_RETENTION" envDefault:"720h"` // 0 keeps events forever
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains(supportedDrivers, c.DBDriver) {
		return fmt.Errorf("SERVREG_DB_DRIVER must be one of %s, got %q",
			strings.Join(supportedDrivers, ", "), c.DBDriver)
	}

	langs := make([]string, 0, len(c.Languages))
	for _, code := range c.Languages {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if slices.Contains(langs, code) {
			return fmt.Errorf("SERVREG_LANGUAGES lists %q twice", code)
		}
		langs = append(langs, code)
	}
	if len(langs) == 0 {
		return fmt.Errorf("SERVREG_LANGUAGES must name at least one language")
	}
	c.Languages = langs

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("SERVREG_LOG_LEVEL: %w", err)
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("SERVREG_RATE_LIMIT_RPS and SERVREG_RATE_LIMIT_BURST must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("SERVREG_REQUEST_TIMEOUT must be positive")
	}
	if c.EventRetention < 0 {
		return fmt.Errorf("SERVREG_EVENT_RETENTION must not be negative")
	}
	return nil
}
