// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package report defines the external output contract of the risk engine.
// A Report is a flat, JSON-serializable structure handed to callers and to
// the persistence collaborator; nothing in this package computes or mutates
// scores.
package report

import "time"

// Recommendation is the final disposition for a property.
type Recommendation string

const (
	RecommendationApprove Recommendation = "approve"
	RecommendationCaution Recommendation = "caution"
	RecommendationReject  Recommendation = "reject"
)

// Score thresholds mapping a composite score to a Recommendation.
const (
	ApproveThreshold = 0.70
	CautionThreshold = 0.40
)

// RecommendationFor maps a composite score to a recommendation using the
// fixed thresholds. Automatic fail overrides the numeric mapping.
func RecommendationFor(score float64, automaticFail bool) Recommendation {
	if automaticFail {
		return RecommendationReject
	}
	switch {
	case score >= ApproveThreshold:
		return RecommendationApprove
	case score >= CautionThreshold:
		return RecommendationCaution
	default:
		return RecommendationReject
	}
}

// Hazard is one triggered deduction in the composite score.
type Hazard struct {
	Category  string  `json:"category"`
	Deduction float64 `json:"deduction"`
	Reason    string  `json:"reason"`
	Cost      float64 `json:"cost"`
}

// ProviderStatus records how one provider call concluded.
type ProviderStatus struct {
	Provider  string `json:"provider"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
}

// Report is the composite risk assessment for one location.
type Report struct {
	ID                  string           `json:"id,omitempty"`
	Score               float64          `json:"score"`
	Recommendation      Recommendation   `json:"recommendation"`
	Confidence          int              `json:"confidence"`
	Hazards             []Hazard         `json:"hazards"`
	TotalEstimatedCost  float64          `json:"totalEstimatedCost"`
	AutomaticFail       bool             `json:"automaticFail"`
	AutomaticFailReason string           `json:"automaticFailReason,omitempty"`
	ProviderStatuses    []ProviderStatus `json:"providerStatuses"`
	CreatedAt           time.Time        `json:"createdAt,omitempty"`
}
