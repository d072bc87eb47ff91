// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package usgsquake queries the USGS seismic hazard service for peak ground
// acceleration at a location.
package usgsquake

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/terravet/terravet/internal/provider"
	tverr "github.com/terravet/terravet/pkg/errors"
)

const defaultBaseURL = "https://earthquake.usgs.gov/ws/designmaps"

// ProviderID is the registry id of this adapter.
const ProviderID = "usgs-seismic"

// Config holds USGS adapter configuration.
type Config struct {
	BaseURL    string // optional, useful for testing against a mock server
	HTTPClient *http.Client
}

// Adapter implements provider.Adapter against the USGS design maps service.
type Adapter struct {
	baseURL string
	client  *http.Client
}

// New creates a USGS seismic adapter.
func New(cfg Config) *Adapter {
	base := defaultBaseURL
	if cfg.BaseURL != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Adapter{baseURL: base, client: cfg.HTTPClient}
}

func (a *Adapter) ID() string { return ProviderID }

func (a *Adapter) Category() provider.Category { return provider.CategorySeismic }

type designMapsResponse struct {
	Response struct {
		Data struct {
			PGA float64 `json:"pga"`
		} `json:"data"`
	} `json:"response"`
}

// Fetch resolves the mapped peak ground acceleration at the query point.
func (a *Adapter) Fetch(ctx context.Context, q provider.Query) (*provider.Payload, error) {
	endpoint := fmt.Sprintf("%s/asce7-16.json?latitude=%.6f&longitude=%.6f&riskCategory=II&siteClass=D&title=terravet",
		a.baseURL, q.Latitude, q.Longitude)

	var body designMapsResponse
	if err := provider.DoJSON(ctx, a.client, ProviderID, endpoint, &body); err != nil {
		return nil, err
	}

	pga := body.Response.Data.PGA
	if pga < 0 || pga > 10 {
		return nil, tverr.Errorf(tverr.CodeProviderResponseInvalid, "usgs returned implausible pga %g", pga)
	}

	return &provider.Payload{
		Category: provider.CategorySeismic,
		Seismic:  &provider.SeismicHazard{PeakGroundAccel: pga},
	}, nil
}
