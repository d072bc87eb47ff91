// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package parcelrecords derives hazard signals from parcel attributes
// already present in the query: construction-era hazardous materials and
// documented prior land use. Both adapters are local and never fail, but
// they flow through the same pipeline so their results carry cache and
// breaker semantics uniformly.
package parcelrecords

import (
	"context"

	"github.com/terravet/terravet/internal/provider"
)

// HazmatProviderID is the registry id of the hazardous materials adapter.
const HazmatProviderID = "parcel-hazmat"

// LandUseProviderID is the registry id of the land-use history adapter.
const LandUseProviderID = "parcel-landuse"

// Construction-era cutoffs for hazardous materials. Lead paint was banned
// for residential use in 1978; asbestos was common in construction between
// 1920 and 1980.
const (
	leadPaintBanYear     = 1978
	asbestosStartYear    = 1920
	asbestosPhaseOutYear = 1980
)

// HazmatAdapter flags lead paint and asbestos likelihood from build year.
type HazmatAdapter struct{}

// NewHazmat creates the hazardous materials adapter.
func NewHazmat() *HazmatAdapter { return &HazmatAdapter{} }

func (a *HazmatAdapter) ID() string { return HazmatProviderID }

func (a *HazmatAdapter) Category() provider.Category { return provider.CategoryHazmat }

func (a *HazmatAdapter) Fetch(_ context.Context, q provider.Query) (*provider.Payload, error) {
	year := q.ConstructionYear
	return &provider.Payload{
		Category: provider.CategoryHazmat,
		Hazmat: &provider.HazmatProfile{
			LeadPaintLikely: year > 0 && year < leadPaintBanYear,
			AsbestosLikely:  year >= asbestosStartYear && year <= asbestosPhaseOutYear,
		},
	}, nil
}

// LandUseAdapter reports the documented prior use of the parcel.
type LandUseAdapter struct{}

// NewLandUse creates the land-use history adapter.
func NewLandUse() *LandUseAdapter { return &LandUseAdapter{} }

func (a *LandUseAdapter) ID() string { return LandUseProviderID }

func (a *LandUseAdapter) Category() provider.Category { return provider.CategoryLandUse }

func (a *LandUseAdapter) Fetch(_ context.Context, q provider.Query) (*provider.Payload, error) {
	uses := []provider.LandUseTag{}
	if q.PriorLandUse != "" {
		uses = append(uses, q.PriorLandUse)
	}
	return &provider.Payload{
		Category: provider.CategoryLandUse,
		LandUse:  &provider.LandUseHistory{Uses: uses},
	}, nil
}
