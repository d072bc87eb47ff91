// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package scoring reduces a complete provider result set to a composite
// risk score, a recommendation, and a confidence value. The rule tables
// are closed over the category enum, so every category a provider can
// report has exactly one evaluator and an unknown category is a
// programming error, not a silently ignored input.
package scoring

import (
	"fmt"

	"github.com/terravet/terravet/internal/provider"
)

// Category weights. A weight is the maximum deduction the category can
// contribute; it doubles as the category's share of the confidence
// denominator.
var categoryWeights = map[provider.Category]float64{
	provider.CategoryFlood:         0.50,
	provider.CategoryContamination: 0.50,
	provider.CategoryLandUse:       0.40,
	provider.CategoryWetlands:      0.25,
	provider.CategorySeismic:       0.20,
	provider.CategoryWildfire:      0.20,
	provider.CategoryHurricane:     0.20,
	provider.CategoryHazmat:        0.10,
	provider.CategoryRadon:         0.03,
}

// Weight returns the scoring weight for a category.
func Weight(c provider.Category) float64 {
	return categoryWeights[c]
}

// finding is one category's contribution to the composite score. A zero
// deduction with autoFail false means the category is clear.
type finding struct {
	deduction      float64
	reason         string
	cost           float64
	autoFail       bool
	autoFailReason string
}

// evaluate dispatches a scored payload to its category rule. The switch is
// total over the category enum.
func evaluate(q provider.Query, p *provider.Payload) finding {
	switch p.Category {
	case provider.CategoryFlood:
		return evalFlood(p.Flood)
	case provider.CategorySeismic:
		return evalSeismic(p.Seismic)
	case provider.CategoryWildfire:
		return evalWildfire(p.Wildfire)
	case provider.CategoryContamination:
		return evalContamination(p.Contamination)
	case provider.CategoryWetlands:
		return evalWetlands(p.Wetlands)
	case provider.CategoryHazmat:
		return evalHazmat(p.Hazmat)
	case provider.CategoryRadon:
		return evalRadon(q, p.Radon)
	case provider.CategoryHurricane:
		return evalHurricane(p.Hurricane)
	case provider.CategoryLandUse:
		return evalLandUse(p.LandUse)
	}
	return finding{}
}

// floodDeductions maps FEMA zone designations to deductions. Zones sharing
// a band share an entry.
var floodDeductions = map[string]float64{
	"X": 0.00,
	"B": 0.05, "C": 0.05,
	"A": 0.25, "AE": 0.25, "AH": 0.25, "AO": 0.25,
	"V": 0.50, "VE": 0.50,
}

func evalFlood(z *provider.FloodZone) finding {
	if z == nil {
		return finding{}
	}
	d := floodDeductions[z.Zone]
	if z.InFloodway && d < 0.50 {
		// Regulatory floodway inside any zone is treated as the top band.
		d = 0.50
	}
	if d == 0 {
		return finding{}
	}
	f := finding{deduction: d, reason: fmt.Sprintf("parcel lies in FEMA flood zone %s", z.Zone)}
	switch {
	case d >= 0.50:
		f.cost = 4500 // annual coastal/floodway premium
	case d >= 0.25:
		f.cost = 1800
	default:
		f.cost = 600
	}
	return f
}

func evalSeismic(s *provider.SeismicHazard) finding {
	if s == nil {
		return finding{}
	}
	pga := s.PeakGroundAccel
	switch {
	case pga >= 0.5:
		return finding{deduction: 0.20, cost: 6000,
			reason: fmt.Sprintf("very high seismic hazard (PGA %.2fg)", pga)}
	case pga >= 0.25:
		return finding{deduction: 0.10, cost: 4000,
			reason: fmt.Sprintf("high seismic hazard (PGA %.2fg)", pga)}
	case pga >= 0.1:
		return finding{deduction: 0.05, cost: 1500,
			reason: fmt.Sprintf("moderate seismic hazard (PGA %.2fg)", pga)}
	}
	return finding{}
}

func evalWildfire(w *provider.WildfireRisk) finding {
	if w == nil {
		return finding{}
	}
	switch w.HazardPotential {
	case 5:
		return finding{deduction: 0.20, cost: 3500, reason: "very high wildfire hazard potential"}
	case 4:
		return finding{deduction: 0.15, cost: 2500, reason: "high wildfire hazard potential"}
	case 3:
		return finding{deduction: 0.10, cost: 2000, reason: "moderate wildfire hazard potential"}
	case 2:
		return finding{deduction: 0.05, cost: 1000, reason: "low-moderate wildfire hazard potential"}
	}
	return finding{}
}

// Contamination distance bands, nearest severe site in meters. A severe
// site at distance zero means the parcel itself is a listed site, which is
// an automatic fail regardless of every other category.
func evalContamination(c *provider.ContaminationSites) finding {
	if c == nil {
		return finding{}
	}
	if dist, ok := c.NearestSevere(); ok {
		switch {
		case dist == 0:
			return finding{
				deduction:      0.50,
				cost:           8500,
				reason:         "parcel is a registered severe contamination site",
				autoFail:       true,
				autoFailReason: "parcel is a registered severe contamination site",
			}
		case dist < 100:
			return finding{deduction: 0.50, cost: 8500,
				reason: fmt.Sprintf("severe contamination site %.0fm from parcel", dist)}
		case dist < 500:
			return finding{deduction: 0.30, cost: 5500,
				reason: fmt.Sprintf("severe contamination site %.0fm from parcel", dist)}
		case dist < 1000:
			return finding{deduction: 0.15, cost: 3500,
				reason: fmt.Sprintf("severe contamination site %.0fm from parcel", dist)}
		case dist < 1609:
			return finding{deduction: 0.05, cost: 1500,
				reason: fmt.Sprintf("severe contamination site %.0fm from parcel", dist)}
		}
	}
	if len(c.Sites) >= 3 {
		return finding{deduction: 0.05, cost: 1500,
			reason: fmt.Sprintf("%d registered facilities within search radius", len(c.Sites))}
	}
	return finding{}
}

// Wetlands step function over percent of parcel covered.
func evalWetlands(w *provider.WetlandsCoverage) finding {
	if w == nil {
		return finding{}
	}
	pct := w.ParcelCoveragePct
	var d float64
	switch {
	case pct >= 50:
		d = 0.25
	case pct >= 30:
		d = 0.15
	case pct >= 15:
		d = 0.10
	case pct >= 5:
		d = 0.05
	default:
		return finding{}
	}
	return finding{deduction: d, cost: 3500,
		reason: fmt.Sprintf("%.0f%% of parcel mapped as wetlands", pct)}
}

// Age-derived hazardous materials. Lead and asbestos terms are additive but
// the combined contribution is capped at the category weight.
func evalHazmat(h *provider.HazmatProfile) finding {
	if h == nil {
		return finding{}
	}
	var d, cost float64
	var reason string
	if h.LeadPaintLikely {
		d += 0.05
		cost += 8000
		reason = "construction era indicates likely lead paint"
	}
	if h.AsbestosLikely {
		d += 0.05
		cost += 12000
		if reason != "" {
			reason = "construction era indicates likely lead paint and asbestos"
		} else {
			reason = "construction era indicates likely asbestos"
		}
	}
	if d == 0 {
		return finding{}
	}
	if max := categoryWeights[provider.CategoryHazmat]; d > max {
		d = max
	}
	return finding{deduction: d, reason: reason, cost: cost}
}

// Radon only matters when the structure has a below-grade level to
// accumulate it.
func evalRadon(q provider.Query, r *provider.RadonZone) finding {
	if r == nil || !q.BelowGrade {
		return finding{}
	}
	switch r.Zone {
	case 1:
		return finding{deduction: 0.03, cost: 1500,
			reason: "EPA radon zone 1 county with below-grade level"}
	case 2:
		return finding{deduction: 0.01, cost: 1500,
			reason: "EPA radon zone 2 county with below-grade level"}
	}
	return finding{}
}

func evalHurricane(h *provider.HurricaneExposure) finding {
	if h == nil {
		return finding{}
	}
	n := h.StrikesPerCentury
	switch {
	case n >= 30:
		return finding{deduction: 0.20, cost: 5000,
			reason: fmt.Sprintf("%d hurricane strikes per century", n)}
	case n >= 15:
		return finding{deduction: 0.10, cost: 3000,
			reason: fmt.Sprintf("%d hurricane strikes per century", n)}
	case n >= 5:
		return finding{deduction: 0.05, cost: 1500,
			reason: fmt.Sprintf("%d hurricane strikes per century", n)}
	}
	return finding{}
}

// landUseDeductions keys prior-use tags to deductions and assessment costs.
// Multiple documented uses score as the single worst use, not a sum; the
// remediation exposure is driven by the dominant use.
var landUseDeductions = map[provider.LandUseTag]struct {
	deduction float64
	cost      float64
	reason    string
}{
	provider.LandUseLandfill:     {0.40, 10000, "parcel previously used as landfill"},
	provider.LandUseMining:       {0.35, 8000, "parcel previously used for mining"},
	provider.LandUseGasStation:   {0.30, 6000, "parcel previously operated as gas station"},
	provider.LandUseDryCleaner:   {0.30, 6000, "parcel previously operated as dry cleaner"},
	provider.LandUseIndustrial:   {0.25, 5000, "parcel previously in industrial use"},
	provider.LandUseOrchard:      {0.15, 2500, "former orchard, possible pesticide residue"},
	provider.LandUseAgricultural: {0.05, 0, "former agricultural use"},
}

func evalLandUse(l *provider.LandUseHistory) finding {
	if l == nil {
		return finding{}
	}
	var worst finding
	for _, use := range l.Uses {
		if r, ok := landUseDeductions[use]; ok && r.deduction > worst.deduction {
			worst = finding{deduction: r.deduction, cost: r.cost, reason: r.reason}
		}
	}
	return worst
}
