// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package main

import (
	"net/http"

	"github.com/terravet/terravet/internal/breaker"
	"github.com/terravet/terravet/internal/cache"
	"github.com/terravet/terravet/internal/config"
	"github.com/terravet/terravet/internal/orchestrator"
	"github.com/terravet/terravet/internal/provider"
	"github.com/terravet/terravet/internal/provider/epafrs"
	"github.com/terravet/terravet/internal/provider/femaflood"
	"github.com/terravet/terravet/internal/provider/fwswetlands"
	"github.com/terravet/terravet/internal/provider/noaastorm"
	"github.com/terravet/terravet/internal/provider/parcelrecords"
	"github.com/terravet/terravet/internal/provider/radonzone"
	"github.com/terravet/terravet/internal/provider/usfswhp"
	"github.com/terravet/terravet/internal/provider/usgsquake"
	"github.com/terravet/terravet/internal/ratelimit"
	"github.com/terravet/terravet/internal/scoring"
	"github.com/terravet/terravet/internal/store"
	storesqlite "github.com/terravet/terravet/internal/store/sqlite"
	tverr "github.com/terravet/terravet/pkg/errors"
)

// Engine holds the wired assessment pipeline and its collaborators.
type Engine struct {
	Registry     *provider.Registry
	Limiter      *ratelimit.Limiter
	Breaker      *breaker.Breaker
	Cache        *cache.Cache
	Orchestrator *orchestrator.Orchestrator
	Scorer       *scoring.Engine
	History      store.AssessmentStore // nil when persistence is disabled
}

// WireEngine builds every adapter from configuration and assembles the
// pipeline: registry, quota limiter, circuit breaker, response cache,
// orchestrator, scoring engine, and optional history store.
func WireEngine(cfg *config.Config) (*Engine, error) {
	// One shared transport; per-call deadlines come from descriptor
	// timeouts, not the client.
	httpClient := &http.Client{}

	registry := provider.NewRegistry()
	for _, id := range config.ProviderIDs() {
		desc, err := cfg.Descriptor(id)
		if err != nil {
			return nil, tverr.Wrapf(err, tverr.CodeCLISetupFailure, "building descriptor for %s", id)
		}
		adapter, err := buildAdapter(id, cfg.Providers[id], httpClient)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(adapter, desc); err != nil {
			return nil, tverr.Wrapf(err, tverr.CodeCLISetupFailure, "registering provider %s", id)
		}
	}

	brk := breaker.New(breaker.Options{
		Threshold:     cfg.Breaker.Threshold,
		Cooldown:      cfg.Breaker.Cooldown,
		MaxCooldown:   cfg.Breaker.MaxCooldown,
		FailureWindow: cfg.Breaker.FailureWindow,
	})
	limiter := ratelimit.New()
	respCache := cache.New(cache.Options{SweepInterval: cfg.Cache.SweepInterval})

	engine := &Engine{
		Registry: registry,
		Limiter:  limiter,
		Breaker:  brk,
		Cache:    respCache,
		Orchestrator: orchestrator.New(registry, limiter, brk, respCache, orchestrator.Options{
			GlobalTimeout: cfg.Assessment.GlobalTimeout,
		}),
		Scorer: scoring.NewEngine(),
	}

	if cfg.Storage.Backend == "sqlite" {
		history, err := storesqlite.New(cfg.Storage.Path)
		if err != nil {
			respCache.Stop()
			return nil, tverr.Wrap(err, tverr.CodeCLISetupFailure, "opening assessment history")
		}
		engine.History = history
	}

	return engine, nil
}

// Close releases the cache sweep goroutine and the history store.
func (e *Engine) Close() {
	e.Cache.Stop()
	if e.History != nil {
		_ = e.History.Close()
	}
}

func buildAdapter(id string, pc config.ProviderConfig, client *http.Client) (provider.Adapter, error) {
	switch id {
	case femaflood.ProviderID:
		return femaflood.New(femaflood.Config{BaseURL: pc.BaseURL, HTTPClient: client}), nil
	case usgsquake.ProviderID:
		return usgsquake.New(usgsquake.Config{BaseURL: pc.BaseURL, HTTPClient: client}), nil
	case usfswhp.ProviderID:
		return usfswhp.New(usfswhp.Config{BaseURL: pc.BaseURL, HTTPClient: client}), nil
	case epafrs.ProviderID:
		return epafrs.New(epafrs.Config{BaseURL: pc.BaseURL, APIKey: pc.APIKey, HTTPClient: client}), nil
	case fwswetlands.ProviderID:
		return fwswetlands.New(fwswetlands.Config{BaseURL: pc.BaseURL, HTTPClient: client}), nil
	case noaastorm.ProviderID:
		return noaastorm.New(noaastorm.Config{BaseURL: pc.BaseURL, HTTPClient: client}), nil
	case radonzone.ProviderID:
		return radonzone.New(radonzone.Config{}), nil
	case parcelrecords.HazmatProviderID:
		return parcelrecords.NewHazmat(), nil
	case parcelrecords.LandUseProviderID:
		return parcelrecords.NewLandUse(), nil
	}
	return nil, tverr.Errorf(tverr.CodeCLISetupFailure, "no adapter for provider %s", id)
}
