// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package orchestrator fans one assessment out to every applicable
// provider concurrently and collects a complete result set. Partial
// provider failure never aborts the assessment; only input validation
// does. Each call flows cache → breaker → rate limiter → adapter.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/terravet/terravet/internal/breaker"
	"github.com/terravet/terravet/internal/cache"
	"github.com/terravet/terravet/internal/provider"
	"github.com/terravet/terravet/internal/ratelimit"
	tverr "github.com/terravet/terravet/pkg/errors"
)

// DefaultGlobalTimeout bounds a whole assessment; it always wins over the
// per-provider timeouts.
const DefaultGlobalTimeout = 45 * time.Second

// Options configures the orchestrator.
type Options struct {
	GlobalTimeout time.Duration
}

// Orchestrator coordinates the fan-out pipeline for assessments.
type Orchestrator struct {
	registry *provider.Registry
	limiter  *ratelimit.Limiter
	breaker  *breaker.Breaker
	cache    *cache.Cache

	globalTimeout time.Duration
}

// New wires the pipeline stages together.
func New(reg *provider.Registry, lim *ratelimit.Limiter, brk *breaker.Breaker, c *cache.Cache, opts Options) *Orchestrator {
	timeout := opts.GlobalTimeout
	if timeout <= 0 {
		timeout = DefaultGlobalTimeout
	}
	return &Orchestrator{
		registry:      reg,
		limiter:       lim,
		breaker:       brk,
		cache:         c,
		globalTimeout: timeout,
	}
}

// Assess runs every enabled provider against the query and returns one
// result per provider, sorted by provider id. The only error return is
// input validation; everything else degrades into result statuses.
func (o *Orchestrator) Assess(ctx context.Context, q provider.Query) ([]provider.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.globalTimeout)
	defer cancel()

	entries := make([]provider.Entry, 0, o.registry.Len())
	for _, e := range o.registry.List() {
		if e.Descriptor.Enabled {
			entries = append(entries, e)
		}
	}

	results := make([]provider.Result, len(entries))
	g := new(errgroup.Group)
	// One task per provider; the provider table is small and static, so
	// this is already a bounded pool.
	g.SetLimit(len(entries) + 1)

	for i, e := range entries {
		if !e.Descriptor.Applicable(q) {
			results[i] = provider.Result{
				Provider: e.Descriptor.ID,
				Category: e.Descriptor.Category,
				Status:   provider.StatusSkipped,
				Weight:   e.Descriptor.Weight,
			}
			continue
		}

		i, e := i, e
		g.Go(func() error {
			results[i] = o.callProvider(ctx, e, q)
			return nil
		})
	}

	_ = g.Wait()
	return results, nil
}

// callProvider runs one guarded provider call and translates every
// failure into a result status.
func (o *Orchestrator) callProvider(ctx context.Context, e provider.Entry, q provider.Query) provider.Result {
	d := e.Descriptor
	start := time.Now()

	fetch := func(fctx context.Context) (*provider.Payload, error) {
		if !o.breaker.Allow(d.ID) {
			return nil, tverr.Errorf(tverr.CodeProviderCircuitOpen, "circuit open for provider %s", d.ID)
		}

		if ok, retryAfter := o.limiter.Allow(d.ID, d.Rate); !ok {
			// The quota rejection never reached the provider, so it must
			// not consume a half-open trial or count as a failure.
			o.breaker.CancelTrial(d.ID)
			return nil, tverr.Errorf(tverr.CodeProviderRateLimitExceeded,
				"provider %s over quota, retry in %s", d.ID, retryAfter.Round(time.Second))
		}

		cctx, cancel := context.WithTimeout(fctx, d.Timeout)
		defer cancel()

		payload, err := e.Adapter.Fetch(cctx, q)
		if err != nil {
			if !tverr.IsTimeout(err) && errors.Is(cctx.Err(), context.DeadlineExceeded) {
				err = tverr.Wrapf(err, tverr.CodeProviderFetchTimeout,
					"provider %s exceeded its %s timeout", d.ID, d.Timeout)
			}
			o.breaker.RecordFailure(d.ID, err)
			return nil, err
		}

		o.breaker.RecordSuccess(d.ID)
		return payload, nil
	}

	payload, status, err := o.cache.GetOrFetch(ctx, cache.Key(d.ID, q), d.CacheTTL, d.StaleWindow, fetch)
	latency := time.Since(start)

	if err != nil {
		slog.Warn("provider call failed",
			"provider", d.ID, "category", d.Category, "status", statusForError(err), "error", err)
		return provider.Result{
			Provider: d.ID,
			Category: d.Category,
			Status:   statusForError(err),
			Weight:   d.Weight,
			Latency:  latency,
			Err:      err.Error(),
		}
	}

	return provider.Result{
		Provider: d.ID,
		Category: d.Category,
		Status:   status,
		Weight:   d.Weight,
		Payload:  payload,
		Latency:  latency,
	}
}

// statusForError maps the error taxonomy onto result statuses.
func statusForError(err error) provider.Status {
	switch {
	case tverr.IsRateLimited(err):
		return provider.StatusRateLimited
	case tverr.IsCircuitOpen(err):
		return provider.StatusCircuitOpen
	case tverr.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded):
		return provider.StatusTimeout
	default:
		return provider.StatusError
	}
}
