// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package scoring

import (
	"math"
	"sort"

	"github.com/terravet/terravet/internal/provider"
	"github.com/terravet/terravet/pkg/report"
)

// Engine turns provider result sets into risk reports. It is stateless;
// one instance serves all assessments.
type Engine struct{}

// NewEngine returns the scoring engine with the built-in rule tables.
func NewEngine() *Engine {
	return &Engine{}
}

// Report scores a complete result set and assembles the final report.
// Deductions are additive across categories and the running score is
// floored at zero once, after all deductions are summed, so the outcome is
// independent of result order. Categories without usable data contribute
// nothing to the score and only lower confidence. An automatic-fail
// finding ends scoring: the report carries that single hazard and nothing
// else, whatever the other categories would have contributed.
func (e *Engine) Report(q provider.Query, results []provider.Result) report.Report {
	var (
		total    float64
		cost     float64
		hazards  []report.Hazard
		autoFail bool
		failWhy  string
	)

	for _, r := range results {
		if !r.Status.Scored() || r.Payload == nil {
			continue
		}
		f := evaluate(q, r.Payload)
		if f.autoFail {
			autoFail = true
			failWhy = f.autoFailReason
			cost = f.cost
			hazards = []report.Hazard{{
				Category:  string(r.Category),
				Deduction: f.deduction,
				Reason:    f.reason,
				Cost:      f.cost,
			}}
			break
		}
		if f.deduction <= 0 {
			continue
		}
		total += f.deduction
		cost += f.cost
		hazards = append(hazards, report.Hazard{
			Category:  string(r.Category),
			Deduction: f.deduction,
			Reason:    f.reason,
			Cost:      f.cost,
		})
	}

	score := 1.0 - total
	if score < 0 {
		score = 0
	}
	if autoFail {
		score = 0
	}

	sort.SliceStable(hazards, func(i, j int) bool {
		return hazards[i].Deduction > hazards[j].Deduction
	})

	return report.Report{
		Score:               round2(score),
		Recommendation:      report.RecommendationFor(score, autoFail),
		Confidence:          Confidence(results),
		Hazards:             hazards,
		TotalEstimatedCost:  cost,
		AutomaticFail:       autoFail,
		AutomaticFailReason: failWhy,
		ProviderStatuses:    providerStatuses(results),
	}
}

// Confidence is the weight share of categories that produced usable data,
// over the weight of every applicable category. Skipped categories were
// ruled out by the applicability predicate, not lost to an outage, so they
// belong in neither side of the ratio. A result carrying a descriptor
// weight override uses it; otherwise the category default applies.
func Confidence(results []provider.Result) int {
	var scored, applicable float64
	for _, r := range results {
		if r.Status == provider.StatusSkipped {
			continue
		}
		w := r.Weight
		if w == 0 {
			w = Weight(r.Category)
		}
		applicable += w
		if r.Status.Scored() {
			scored += w
		}
	}
	if applicable == 0 {
		return 0
	}
	return int(math.Round(100 * scored / applicable))
}

// providerStatuses renders the per-provider outcome list in stable
// provider-id order.
func providerStatuses(results []provider.Result) []report.ProviderStatus {
	out := make([]report.ProviderStatus, 0, len(results))
	for _, r := range results {
		out = append(out, report.ProviderStatus{
			Provider:  r.Provider,
			Status:    string(r.Status),
			LatencyMs: r.Latency.Milliseconds(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
