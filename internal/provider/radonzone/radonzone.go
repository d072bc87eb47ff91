// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package radonzone resolves the EPA radon zone for a county from the
// static EPA Map of Radon Zones. The map is distributed as a fixed table,
// so this adapter performs no network calls.
package radonzone

import (
	"context"
	"strings"

	"github.com/terravet/terravet/internal/provider"
	tverr "github.com/terravet/terravet/pkg/errors"
)

// ProviderID is the registry id of this adapter.
const ProviderID = "epa-radon"

// stateZones is the predominant EPA radon zone per state. Zone 1 predicts
// indoor averages above 4 pCi/L, zone 3 below 2 pCi/L. County overrides
// refine states with mixed geology.
var stateZones = map[string]int{
	"AL": 2, "AK": 2, "AZ": 2, "AR": 2, "CA": 2, "CO": 1, "CT": 2, "DE": 3,
	"FL": 3, "GA": 2, "HI": 3, "ID": 1, "IL": 1, "IN": 1, "IA": 1, "KS": 1,
	"KY": 1, "LA": 3, "ME": 1, "MD": 2, "MA": 2, "MI": 2, "MN": 1, "MS": 3,
	"MO": 1, "MT": 1, "NE": 1, "NV": 2, "NH": 1, "NJ": 2, "NM": 2, "NY": 2,
	"NC": 2, "ND": 1, "OH": 1, "OK": 2, "OR": 2, "PA": 1, "RI": 2, "SC": 3,
	"SD": 1, "TN": 2, "TX": 3, "UT": 1, "VT": 1, "VA": 2, "WA": 2, "WV": 2,
	"WI": 1, "WY": 1, "DC": 2,
}

// countyOverrides keys are "STATE/COUNTY" in upper case.
var countyOverrides = map[string]int{
	"PA/BLAIR":      1,
	"PA/CENTRE":     1,
	"NY/ONONDAGA":   1,
	"FL/ALACHUA":    2,
	"TX/EL PASO":    2,
	"WA/SPOKANE":    1,
}

// Config allows extending the county override table from configuration.
type Config struct {
	Overrides map[string]int
}

// Adapter implements provider.Adapter from the static zone table.
type Adapter struct {
	overrides map[string]int
}

// New creates a radon zone adapter.
func New(cfg Config) *Adapter {
	return &Adapter{overrides: cfg.Overrides}
}

func (a *Adapter) ID() string { return ProviderID }

func (a *Adapter) Category() provider.Category { return provider.CategoryRadon }

// Fetch resolves the radon zone for the query's state and county.
func (a *Adapter) Fetch(_ context.Context, q provider.Query) (*provider.Payload, error) {
	state := strings.ToUpper(strings.TrimSpace(q.State))
	if state == "" {
		return nil, tverr.New(tverr.CodeProviderResponseInvalid, "radon lookup requires a state")
	}

	zone, ok := stateZones[state]
	if !ok {
		return nil, tverr.Errorf(tverr.CodeProviderResponseInvalid, "no radon zone mapped for state %q", state)
	}

	if county := strings.ToUpper(strings.TrimSpace(q.County)); county != "" {
		key := state + "/" + county
		if z, ok := a.overrides[key]; ok {
			zone = z
		} else if z, ok := countyOverrides[key]; ok {
			zone = z
		}
	}

	return &provider.Payload{
		Category: provider.CategoryRadon,
		Radon:    &provider.RadonZone{Zone: zone},
	}, nil
}
