// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package provider

import (
	"time"

	tverr "github.com/terravet/terravet/pkg/errors"
)

// RateWindows holds the fixed call quotas for one provider. Zero means the
// window is unlimited.
type RateWindows struct {
	PerMinute int `yaml:"per_minute" json:"per_minute"`
	PerHour   int `yaml:"per_hour" json:"per_hour"`
	PerDay    int `yaml:"per_day" json:"per_day"`
}

// Descriptor is the static configuration of one provider. The table of
// descriptors is loaded once at process start and immutable afterwards.
type Descriptor struct {
	ID       string   `yaml:"id" json:"id"`
	Category Category `yaml:"category" json:"category"`
	Enabled  bool     `yaml:"enabled" json:"enabled"`

	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	Rate        RateWindows   `yaml:"rate" json:"rate"`
	CacheTTL    time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
	StaleWindow time.Duration `yaml:"stale_window" json:"stale_window"`

	// Weight is the provider's share of the confidence denominator and the
	// cap on its category's deduction.
	Weight float64 `yaml:"weight" json:"weight"`

	// Applicability predicate parameters. A provider whose predicate does
	// not match a query is skipped without a confidence penalty.
	//
	// MaxCoastDistanceKm skips the provider for parcels further from the
	// coast than this (0 disables the check). RequiresBelowGrade skips
	// parcels without a basement or crawl space. RequiresConstructionYear
	// skips parcels whose build year is unknown.
	MaxCoastDistanceKm       float64 `yaml:"max_coast_distance_km" json:"max_coast_distance_km"`
	RequiresBelowGrade       bool    `yaml:"requires_below_grade" json:"requires_below_grade"`
	RequiresConstructionYear bool    `yaml:"requires_construction_year" json:"requires_construction_year"`
}

// Defaults applied by Validate when a descriptor omits a value.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultCacheTTL    = time.Hour
	DefaultStaleWindow = 24 * time.Hour
)

// Validate checks the descriptor and fills defaults in place.
func (d *Descriptor) Validate() error {
	if d.ID == "" {
		return tverr.New(tverr.CodeConfigValidateInvalidValue, "provider id is required")
	}
	if !d.Category.Valid() {
		return tverr.Errorf(tverr.CodeConfigValidateInvalidValue,
			"provider %s: unknown category %q", d.ID, d.Category)
	}
	if d.Weight < 0 {
		return tverr.Errorf(tverr.CodeConfigValidateInvalidValue,
			"provider %s: weight must not be negative, got %g", d.ID, d.Weight)
	}
	if d.Rate.PerMinute < 0 || d.Rate.PerHour < 0 || d.Rate.PerDay < 0 {
		return tverr.Errorf(tverr.CodeConfigValidateInvalidValue,
			"provider %s: rate limits must not be negative", d.ID)
	}
	if d.Timeout == 0 {
		d.Timeout = DefaultTimeout
	}
	if d.CacheTTL == 0 {
		d.CacheTTL = DefaultCacheTTL
	}
	if d.StaleWindow == 0 {
		d.StaleWindow = DefaultStaleWindow
	}
	if d.StaleWindow < d.CacheTTL {
		return tverr.Errorf(tverr.CodeConfigValidateInvalidValue,
			"provider %s: stale window %s is shorter than cache ttl %s", d.ID, d.StaleWindow, d.CacheTTL)
	}
	return nil
}

// Applicable reports whether the provider is relevant for the query. A
// skipped provider yields a skipped result with no weight penalty.
func (d Descriptor) Applicable(q Query) bool {
	if d.MaxCoastDistanceKm > 0 {
		if q.CoastDistanceKm < 0 || q.CoastDistanceKm > d.MaxCoastDistanceKm {
			return false
		}
	}
	if d.RequiresBelowGrade && !q.BelowGrade {
		return false
	}
	if d.RequiresConstructionYear && q.ConstructionYear == 0 {
		return false
	}
	return true
}
