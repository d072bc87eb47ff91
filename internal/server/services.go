// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package server

import (
	"context"

	"github.com/terravet/terravet/internal/breaker"
	"github.com/terravet/terravet/internal/provider"
	"github.com/terravet/terravet/internal/ratelimit"
	"github.com/terravet/terravet/internal/store"
	"github.com/terravet/terravet/pkg/health"
	"github.com/terravet/terravet/pkg/report"
)

// Assessor runs the provider fan-out for one location.
type Assessor interface {
	Assess(ctx context.Context, q provider.Query) ([]provider.Result, error)
}

// Scorer reduces a result set to the final report.
type Scorer interface {
	Report(q provider.Query, results []provider.Result) report.Report
}

// HealthSource reports the current resiliency state of every provider.
type HealthSource interface {
	Providers() []health.ProviderHealth
}

// Services bundles the dependencies the REST routes need. History may be
// nil when persistence is disabled; the assessment endpoints keep working
// and the history endpoints report 503.
type Services struct {
	Assessor Assessor
	Scorer   Scorer
	History  store.AssessmentStore
	Health   HealthSource
}

// healthSource assembles provider health snapshots from the registry and
// the live limiter and breaker state.
type healthSource struct {
	registry *provider.Registry
	limiter  *ratelimit.Limiter
	breaker  *breaker.Breaker
}

// NewHealthSource builds a HealthSource over the running pipeline.
func NewHealthSource(reg *provider.Registry, lim *ratelimit.Limiter, brk *breaker.Breaker) HealthSource {
	return &healthSource{registry: reg, limiter: lim, breaker: brk}
}

func (h *healthSource) Providers() []health.ProviderHealth {
	entries := h.registry.List()
	out := make([]health.ProviderHealth, 0, len(entries))
	for _, e := range entries {
		out = append(out, health.ProviderHealth{
			Provider: e.Descriptor.ID,
			Category: string(e.Descriptor.Category),
			Enabled:  e.Descriptor.Enabled,
			Breaker:  h.breaker.Snapshot(e.Descriptor.ID),
			Limiter:  h.limiter.Snapshot(e.Descriptor.ID),
		})
	}
	return out
}
