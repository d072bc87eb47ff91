// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package provider defines the contracts between the risk engine and the
// external hazard data sources: the adapter interface, the closed set of
// hazard categories, the typed payloads each category produces, and the
// per-call result envelope the orchestrator collects.
package provider

import (
	"context"
	"time"

	tverr "github.com/terravet/terravet/pkg/errors"
)

// Category is the closed set of hazard categories the engine scores.
// The scoring tables are total over this set; an adapter declaring an
// unknown category is rejected at registration.
type Category string

const (
	CategoryFlood         Category = "flood"
	CategorySeismic       Category = "seismic"
	CategoryWildfire      Category = "wildfire"
	CategoryContamination Category = "contamination"
	CategoryWetlands      Category = "wetlands"
	CategoryHazmat        Category = "hazmat"
	CategoryRadon         Category = "radon"
	CategoryHurricane     Category = "hurricane"
	CategoryLandUse       Category = "landuse"
)

// Categories lists every known category in stable order.
func Categories() []Category {
	return []Category{
		CategoryFlood,
		CategorySeismic,
		CategoryWildfire,
		CategoryContamination,
		CategoryWetlands,
		CategoryHazmat,
		CategoryRadon,
		CategoryHurricane,
		CategoryLandUse,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryFlood, CategorySeismic, CategoryWildfire, CategoryContamination,
		CategoryWetlands, CategoryHazmat, CategoryRadon, CategoryHurricane, CategoryLandUse:
		return true
	}
	return false
}

// Status classifies how one provider call concluded.
type Status string

const (
	StatusOK          Status = "ok"
	StatusCached      Status = "cached"
	StatusStale       Status = "stale"
	StatusRateLimited Status = "rate_limited"
	StatusCircuitOpen Status = "circuit_open"
	StatusTimeout     Status = "timeout"
	StatusError       Status = "error"
	StatusSkipped     Status = "skipped"
)

// Scored reports whether a result with this status carries usable data for
// the scoring engine. Everything else contributes zero deduction and only
// lowers confidence.
func (s Status) Scored() bool {
	return s == StatusOK || s == StatusCached || s == StatusStale
}

// LandUseTag is the closed set of prior-use categories the engine knows
// cleanup costs for.
type LandUseTag string

const (
	LandUseResidential  LandUseTag = "residential"
	LandUseAgricultural LandUseTag = "agricultural"
	LandUseOrchard      LandUseTag = "orchard"
	LandUseGasStation   LandUseTag = "gas_station"
	LandUseDryCleaner   LandUseTag = "dry_cleaner"
	LandUseIndustrial   LandUseTag = "industrial"
	LandUseLandfill     LandUseTag = "landfill"
	LandUseMining       LandUseTag = "mining"
	LandUseUnknown      LandUseTag = "unknown"
)

// Valid reports whether t is a known land-use tag.
func (t LandUseTag) Valid() bool {
	switch t {
	case LandUseResidential, LandUseAgricultural, LandUseOrchard, LandUseGasStation,
		LandUseDryCleaner, LandUseIndustrial, LandUseLandfill, LandUseMining, LandUseUnknown:
		return true
	}
	return false
}

// Query is the location context an assessment runs against. Geocoding and
// parcel enrichment happen upstream; the engine consumes the result.
type Query struct {
	Latitude         float64
	Longitude        float64
	RadiusMeters     float64
	ConstructionYear int
	BelowGrade       bool
	PriorLandUse     LandUseTag
	County           string
	State            string
	// CoastDistanceKm is the precomputed distance to the nearest coastline,
	// used only by applicability predicates. Negative means unknown.
	CoastDistanceKm float64
}

// DefaultRadiusMeters is applied when a query omits a search radius.
const DefaultRadiusMeters = 1609 // one mile

// Validate checks the query for the one class of error that aborts an
// assessment outright. Everything downstream degrades instead of failing.
func (q Query) Validate() error {
	if q.Latitude < -90 || q.Latitude > 90 {
		return tverr.Errorf(tverr.CodeAssessInputInvalid, "latitude %.6f out of range [-90, 90]", q.Latitude)
	}
	if q.Longitude < -180 || q.Longitude > 180 {
		return tverr.Errorf(tverr.CodeAssessInputInvalid, "longitude %.6f out of range [-180, 180]", q.Longitude)
	}
	if q.RadiusMeters < 0 {
		return tverr.Errorf(tverr.CodeAssessInputInvalid, "radius must not be negative, got %.1f", q.RadiusMeters)
	}
	if q.ConstructionYear < 0 {
		return tverr.Errorf(tverr.CodeAssessInputInvalid, "construction year must not be negative, got %d", q.ConstructionYear)
	}
	if q.ConstructionYear > time.Now().Year()+1 {
		return tverr.Errorf(tverr.CodeAssessInputInvalid, "construction year %d is in the future", q.ConstructionYear)
	}
	if q.PriorLandUse != "" && !q.PriorLandUse.Valid() {
		return tverr.Errorf(tverr.CodeAssessInputInvalid, "unknown prior land use %q", q.PriorLandUse)
	}
	return nil
}

// FloodZone is the FEMA zone designation for the parcel.
type FloodZone struct {
	Zone       string `json:"zone"`
	InFloodway bool   `json:"in_floodway"`
}

// SeismicHazard is the peak ground acceleration (fraction of g) with a 2%
// chance of exceedance in 50 years.
type SeismicHazard struct {
	PeakGroundAccel float64 `json:"peak_ground_accel"`
}

// WildfireRisk is the wildfire hazard potential class, 0 (none) to 5 (very high).
type WildfireRisk struct {
	HazardPotential int `json:"hazard_potential"`
}

// ContaminationSite is one registered contamination site near the parcel.
type ContaminationSite struct {
	Name           string  `json:"name"`
	DistanceMeters float64 `json:"distance_meters"`
	Severe         bool    `json:"severe"`
}

// ContaminationSites lists registered sites within the query radius.
type ContaminationSites struct {
	Sites []ContaminationSite `json:"sites"`
}

// NearestSevere returns the distance to the closest severe site, if any.
func (c ContaminationSites) NearestSevere() (float64, bool) {
	found := false
	nearest := 0.0
	for _, s := range c.Sites {
		if !s.Severe {
			continue
		}
		if !found || s.DistanceMeters < nearest {
			nearest = s.DistanceMeters
			found = true
		}
	}
	return nearest, found
}

// WetlandsCoverage is the share of the parcel mapped as wetlands.
type WetlandsCoverage struct {
	ParcelCoveragePct float64 `json:"parcel_coverage_pct"`
}

// HazmatProfile flags age-derived hazardous material exposure.
type HazmatProfile struct {
	LeadPaintLikely bool `json:"lead_paint_likely"`
	AsbestosLikely  bool `json:"asbestos_likely"`
}

// RadonZone is the EPA radon zone for the county, 1 (highest) to 3 (lowest).
type RadonZone struct {
	Zone int `json:"zone"`
}

// HurricaneExposure summarizes historical hurricane strikes near the parcel.
type HurricaneExposure struct {
	StrikesPerCentury int `json:"strikes_per_century"`
}

// LandUseHistory is the documented prior-use record for the parcel.
type LandUseHistory struct {
	Uses []LandUseTag `json:"uses"`
}

// Payload is the typed union of category data. Exactly one pointer is
// non-nil, matching Category.
type Payload struct {
	Category      Category            `json:"category"`
	Flood         *FloodZone          `json:"flood,omitempty"`
	Seismic       *SeismicHazard      `json:"seismic,omitempty"`
	Wildfire      *WildfireRisk       `json:"wildfire,omitempty"`
	Contamination *ContaminationSites `json:"contamination,omitempty"`
	Wetlands      *WetlandsCoverage   `json:"wetlands,omitempty"`
	Hazmat        *HazmatProfile      `json:"hazmat,omitempty"`
	Radon         *RadonZone          `json:"radon,omitempty"`
	Hurricane     *HurricaneExposure  `json:"hurricane,omitempty"`
	LandUse       *LandUseHistory     `json:"landuse,omitempty"`
}

// Result is one provider's contribution to an assessment. The orchestrator
// always produces exactly one Result per configured provider, whatever
// happened to the call.
type Result struct {
	Provider string   `json:"provider"`
	Category Category `json:"category"`
	Status   Status   `json:"status"`
	// Weight is the descriptor's confidence share, carried on the result so
	// per-provider overrides reach the scoring engine. Zero means the
	// category default applies.
	Weight  float64       `json:"weight,omitempty"`
	Payload *Payload      `json:"payload,omitempty"`
	Latency time.Duration `json:"latency"`
	Err     string        `json:"error,omitempty"`
}

// Adapter translates a location query into a typed payload for one
// external data source. Implementations must return errors already coded
// with the pkg/errors taxonomy; transport-level errors must not leak.
type Adapter interface {
	ID() string
	Category() Category
	Fetch(ctx context.Context, q Query) (*Payload, error)
}
