// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package config

import (
	"time"

	"github.com/terravet/terravet/internal/provider"
)

// providerDefaults is one row of the built-in provider table. The table is
// the single source for provider ids, categories, and default tuning; a
// config file can override tuning but cannot invent providers.
type providerDefaults struct {
	category                 provider.Category
	baseURL                  string
	timeout                  time.Duration
	rate                     provider.RateWindows
	cacheTTL                 time.Duration
	staleWindow              time.Duration
	weight                   float64
	maxCoastDistanceKm       float64
	requiresBelowGrade       bool
	requiresConstructionYear bool
}

// Rate limits reflect the published usage policies of the public services;
// zero windows mean the source is local and unmetered. Cache lifetimes
// track how often each dataset actually changes: flood maps revise on a
// letter-of-map cycle, seismic and radon data are effectively static
// between survey editions.
var providerTable = map[string]providerDefaults{
	"fema-nfhl": {
		category:    provider.CategoryFlood,
		baseURL:     "https://hazards.fema.gov/arcgis/rest/services/public/NFHL/MapServer",
		timeout:     30 * time.Second,
		rate:        provider.RateWindows{PerMinute: 60, PerHour: 1000, PerDay: 10000},
		cacheTTL:    24 * time.Hour,
		staleWindow: 7 * 24 * time.Hour,
		weight:      0.50,
	},
	"usgs-seismic": {
		category:    provider.CategorySeismic,
		baseURL:     "https://earthquake.usgs.gov/ws/designmaps",
		timeout:     30 * time.Second,
		rate:        provider.RateWindows{PerMinute: 30, PerHour: 500, PerDay: 5000},
		cacheTTL:    7 * 24 * time.Hour,
		staleWindow: 30 * 24 * time.Hour,
		weight:      0.20,
	},
	"usfs-whp": {
		category:    provider.CategoryWildfire,
		baseURL:     "https://apps.fs.usda.gov/fsgisx01/rest/services/wildfire",
		timeout:     30 * time.Second,
		rate:        provider.RateWindows{PerMinute: 30, PerHour: 300, PerDay: 3000},
		cacheTTL:    7 * 24 * time.Hour,
		staleWindow: 30 * 24 * time.Hour,
		weight:      0.20,
	},
	"epa-frs": {
		category:    provider.CategoryContamination,
		baseURL:     "https://ofmpub.epa.gov/frs_public2",
		timeout:     30 * time.Second,
		rate:        provider.RateWindows{PerMinute: 30, PerHour: 300, PerDay: 3000},
		cacheTTL:    24 * time.Hour,
		staleWindow: 7 * 24 * time.Hour,
		weight:      0.50,
	},
	"fws-nwi": {
		category:    provider.CategoryWetlands,
		baseURL:     "https://www.fws.gov/wetlandsmapservice/rest/services",
		timeout:     30 * time.Second,
		rate:        provider.RateWindows{PerMinute: 60, PerHour: 600, PerDay: 6000},
		cacheTTL:    7 * 24 * time.Hour,
		staleWindow: 30 * 24 * time.Hour,
		weight:      0.25,
	},
	"noaa-hurdat": {
		category:           provider.CategoryHurricane,
		baseURL:            "https://www.nhc.noaa.gov/data",
		timeout:            30 * time.Second,
		rate:               provider.RateWindows{PerMinute: 30, PerHour: 300, PerDay: 1000},
		cacheTTL:           30 * 24 * time.Hour,
		staleWindow:        90 * 24 * time.Hour,
		weight:             0.20,
		maxCoastDistanceKm: 100,
	},
	"epa-radon": {
		category:           provider.CategoryRadon,
		timeout:            5 * time.Second,
		cacheTTL:           30 * 24 * time.Hour,
		staleWindow:        90 * 24 * time.Hour,
		weight:             0.03,
		requiresBelowGrade: true,
	},
	"parcel-hazmat": {
		category:                 provider.CategoryHazmat,
		timeout:                  5 * time.Second,
		cacheTTL:                 24 * time.Hour,
		staleWindow:              7 * 24 * time.Hour,
		weight:                   0.10,
		requiresConstructionYear: true,
	},
	"parcel-landuse": {
		category:    provider.CategoryLandUse,
		timeout:     5 * time.Second,
		cacheTTL:    24 * time.Hour,
		staleWindow: 7 * 24 * time.Hour,
		weight:      0.40,
	},
}
