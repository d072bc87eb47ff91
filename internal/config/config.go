// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package config loads the engine configuration with the precedence
// flags > environment > file > defaults. Provider entries merge over the
// built-in provider table, so a config file only states what it changes.
package config

import (
	"errors"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/terravet/terravet/internal/provider"
	tverr "github.com/terravet/terravet/pkg/errors"
)

// Config is the top-level Terravet configuration.
type Config struct {
	Server     ServerConfig              `mapstructure:"server"`
	Storage    StorageConfig             `mapstructure:"storage"`
	Assessment AssessmentConfig          `mapstructure:"assessment"`
	Breaker    BreakerConfig             `mapstructure:"breaker"`
	Cache      CacheConfig               `mapstructure:"cache"`
	Providers  map[string]ProviderConfig `mapstructure:"providers"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Listen            string `mapstructure:"listen"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// StorageConfig selects the assessment history backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// AssessmentConfig bounds a whole assessment run.
type AssessmentConfig struct {
	GlobalTimeout time.Duration `mapstructure:"global_timeout"`
}

// BreakerConfig tunes the shared circuit breaker options.
type BreakerConfig struct {
	Threshold     int           `mapstructure:"threshold"`
	Cooldown      time.Duration `mapstructure:"cooldown"`
	MaxCooldown   time.Duration `mapstructure:"max_cooldown"`
	FailureWindow time.Duration `mapstructure:"failure_window"`
}

// CacheConfig tunes the response cache.
type CacheConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ProviderConfig is the per-provider tuning block. Zero values fall back
// to the built-in provider table.
type ProviderConfig struct {
	Enabled                  bool          `mapstructure:"enabled"`
	BaseURL                  string        `mapstructure:"base_url"`
	APIKey                   string        `mapstructure:"api_key"`
	Timeout                  time.Duration `mapstructure:"timeout"`
	RatePerMinute            int           `mapstructure:"rate_per_minute"`
	RatePerHour              int           `mapstructure:"rate_per_hour"`
	RatePerDay               int           `mapstructure:"rate_per_day"`
	CacheTTL                 time.Duration `mapstructure:"cache_ttl"`
	StaleWindow              time.Duration `mapstructure:"stale_window"`
	Weight                   float64       `mapstructure:"weight"`
	MaxCoastDistanceKm       float64       `mapstructure:"max_coast_distance_km"`
	RequiresBelowGrade       bool          `mapstructure:"requires_below_grade"`
	RequiresConstructionYear bool          `mapstructure:"requires_construction_year"`
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix TERRAVET_).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.listen", "127.0.0.1:8580")
	v.SetDefault("server.requests_per_minute", 60)
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", "terravet.db")
	v.SetDefault("assessment.global_timeout", "45s")
	v.SetDefault("breaker.threshold", 5)
	v.SetDefault("breaker.cooldown", "30s")
	v.SetDefault("breaker.max_cooldown", "5m")
	v.SetDefault("breaker.failure_window", "2m")
	v.SetDefault("cache.sweep_interval", "10m")
	for id, d := range providerTable {
		key := "providers." + id + "."
		v.SetDefault(key+"enabled", true)
		v.SetDefault(key+"base_url", d.baseURL)
		v.SetDefault(key+"timeout", d.timeout.String())
		v.SetDefault(key+"rate_per_minute", d.rate.PerMinute)
		v.SetDefault(key+"rate_per_hour", d.rate.PerHour)
		v.SetDefault(key+"rate_per_day", d.rate.PerDay)
		v.SetDefault(key+"cache_ttl", d.cacheTTL.String())
		v.SetDefault(key+"stale_window", d.staleWindow.String())
		v.SetDefault(key+"weight", d.weight)
		v.SetDefault(key+"max_coast_distance_km", d.maxCoastDistanceKm)
		v.SetDefault(key+"requires_below_grade", d.requiresBelowGrade)
		v.SetDefault(key+"requires_construction_year", d.requiresConstructionYear)
	}

	// Environment
	v.SetEnvPrefix("TERRAVET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, tverr.Errorf(tverr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, tverr.Errorf(tverr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, tverr.Errorf(tverr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors, collecting all
// issues rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateProviders()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, tverr.New(tverr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
	} else {
		_, portStr, err := net.SplitHostPort(c.Server.Listen)
		if err != nil {
			errs = append(errs, tverr.Errorf(tverr.CodeConfigValidateInvalidValue,
				"config: server.listen must be a valid host:port address, got %q: %w",
				c.Server.Listen, err,
			))
		} else if port, err := strconv.Atoi(portStr); err != nil || port < 1 || port > 65535 {
			errs = append(errs, tverr.Errorf(tverr.CodeConfigValidateInvalidValue,
				"config: server.listen port must be between 1 and 65535, got %q", portStr,
			))
		}
	}

	if c.Server.RequestsPerMinute <= 0 {
		errs = append(errs, tverr.Errorf(tverr.CodeConfigValidateInvalidValue,
			"config: server.requests_per_minute must be greater than 0, got %d",
			c.Server.RequestsPerMinute,
		))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"sqlite": true, "none": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, tverr.Errorf(tverr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [sqlite, none], got %q",
			c.Storage.Backend,
		))
	}
	if c.Storage.Backend == "sqlite" && c.Storage.Path == "" {
		errs = append(errs, tverr.New(tverr.CodeConfigValidateInvalidValue,
			"config: storage.path must not be empty for the sqlite backend"))
	}

	return errs
}

func (c *Config) validateProviders() []error {
	var errs []error

	for _, id := range sortedProviderIDs(c.Providers) {
		pc := c.Providers[id]
		if _, ok := providerTable[id]; !ok {
			errs = append(errs, tverr.Errorf(tverr.CodeConfigValidateInvalidValue,
				"config: providers.%s is not a known provider", id))
			continue
		}
		if pc.Weight < 0 {
			errs = append(errs, tverr.Errorf(tverr.CodeConfigValidateInvalidValue,
				"config: providers.%s.weight must not be negative, got %g", id, pc.Weight))
		}
		if pc.StaleWindow > 0 && pc.CacheTTL > 0 && pc.StaleWindow < pc.CacheTTL {
			errs = append(errs, tverr.Errorf(tverr.CodeConfigValidateInvalidValue,
				"config: providers.%s.stale_window (%s) must not be shorter than cache_ttl (%s)",
				id, pc.StaleWindow, pc.CacheTTL))
		}
	}

	return errs
}

// Descriptor builds the provider descriptor for a known provider id.
func (c *Config) Descriptor(id string) (provider.Descriptor, error) {
	d, ok := providerTable[id]
	if !ok {
		return provider.Descriptor{}, tverr.Errorf(tverr.CodeProviderNotFound, "provider %s", id)
	}
	pc := c.Providers[id]

	desc := provider.Descriptor{
		ID:       id,
		Category: d.category,
		Enabled:  pc.Enabled,
		Timeout:  pc.Timeout,
		Rate: provider.RateWindows{
			PerMinute: pc.RatePerMinute,
			PerHour:   pc.RatePerHour,
			PerDay:    pc.RatePerDay,
		},
		CacheTTL:                 pc.CacheTTL,
		StaleWindow:              pc.StaleWindow,
		Weight:                   pc.Weight,
		MaxCoastDistanceKm:       pc.MaxCoastDistanceKm,
		RequiresBelowGrade:       pc.RequiresBelowGrade,
		RequiresConstructionYear: pc.RequiresConstructionYear,
	}
	if err := desc.Validate(); err != nil {
		return provider.Descriptor{}, err
	}
	return desc, nil
}

// ProviderIDs lists every known provider id in stable order.
func ProviderIDs() []string {
	ids := make([]string, 0, len(providerTable))
	for id := range providerTable {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedProviderIDs(m map[string]ProviderConfig) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
