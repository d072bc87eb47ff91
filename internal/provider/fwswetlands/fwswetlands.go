// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package fwswetlands queries the US Fish & Wildlife National Wetlands
// Inventory for the share of a parcel mapped as wetlands.
package fwswetlands

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/terravet/terravet/internal/provider"
	tverr "github.com/terravet/terravet/pkg/errors"
)

const defaultBaseURL = "https://www.fws.gov/wetlandsmapper/rest"

// ProviderID is the registry id of this adapter.
const ProviderID = "fws-nwi"

// Config holds NWI adapter configuration.
type Config struct {
	BaseURL    string // optional, useful for testing against a mock server
	HTTPClient *http.Client
}

// Adapter implements provider.Adapter against the NWI parcel query.
type Adapter struct {
	baseURL string
	client  *http.Client
}

// New creates a wetlands adapter.
func New(cfg Config) *Adapter {
	base := defaultBaseURL
	if cfg.BaseURL != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Adapter{baseURL: base, client: cfg.HTTPClient}
}

func (a *Adapter) ID() string { return ProviderID }

func (a *Adapter) Category() provider.Category { return provider.CategoryWetlands }

type coverageResponse struct {
	CoveragePct *float64 `json:"coverage_pct"`
}

// Fetch resolves the wetlands coverage of the parcel around the query point.
func (a *Adapter) Fetch(ctx context.Context, q provider.Query) (*provider.Payload, error) {
	radius := q.RadiusMeters
	if radius == 0 {
		radius = provider.DefaultRadiusMeters
	}

	endpoint := fmt.Sprintf("%s/parcel/coverage?lat=%.6f&lng=%.6f&radius_m=%.0f",
		a.baseURL, q.Latitude, q.Longitude, radius)

	var body coverageResponse
	if err := provider.DoJSON(ctx, a.client, ProviderID, endpoint, &body); err != nil {
		return nil, err
	}

	if body.CoveragePct == nil {
		return nil, tverr.New(tverr.CodeProviderResponseInvalid, "nwi response missing coverage_pct")
	}
	pct := *body.CoveragePct
	if pct < 0 || pct > 100 {
		return nil, tverr.Errorf(tverr.CodeProviderResponseInvalid, "nwi coverage %g outside [0, 100]", pct)
	}

	return &provider.Payload{
		Category: provider.CategoryWetlands,
		Wetlands: &provider.WetlandsCoverage{ParcelCoveragePct: pct},
	}, nil
}
