// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package noaastorm queries NOAA's historical hurricane track archive for
// strike frequency near a coastal parcel.
package noaastorm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/terravet/terravet/internal/provider"
	tverr "github.com/terravet/terravet/pkg/errors"
)

const defaultBaseURL = "https://www.ncei.noaa.gov/access/services/hurricanes"

// ProviderID is the registry id of this adapter.
const ProviderID = "noaa-hurdat"

// Config holds NOAA adapter configuration.
type Config struct {
	BaseURL    string // optional, useful for testing against a mock server
	HTTPClient *http.Client
}

// Adapter implements provider.Adapter against the hurricane track archive.
type Adapter struct {
	baseURL string
	client  *http.Client
}

// New creates a hurricane exposure adapter.
func New(cfg Config) *Adapter {
	base := defaultBaseURL
	if cfg.BaseURL != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Adapter{baseURL: base, client: cfg.HTTPClient}
}

func (a *Adapter) ID() string { return ProviderID }

func (a *Adapter) Category() provider.Category { return provider.CategoryHurricane }

type strikesResponse struct {
	Strikes *int `json:"strikes_per_century"`
}

// Fetch resolves historical hurricane strike frequency at the query point.
func (a *Adapter) Fetch(ctx context.Context, q provider.Query) (*provider.Payload, error) {
	endpoint := fmt.Sprintf("%s/strikes?lat=%.6f&lng=%.6f", a.baseURL, q.Latitude, q.Longitude)

	var body strikesResponse
	if err := provider.DoJSON(ctx, a.client, ProviderID, endpoint, &body); err != nil {
		return nil, err
	}

	if body.Strikes == nil {
		return nil, tverr.New(tverr.CodeProviderResponseInvalid, "hurdat response missing strikes_per_century")
	}
	if *body.Strikes < 0 {
		return nil, tverr.Errorf(tverr.CodeProviderResponseInvalid, "hurdat strike count %d is negative", *body.Strikes)
	}

	return &provider.Payload{
		Category:  provider.CategoryHurricane,
		Hurricane: &provider.HurricaneExposure{StrikesPerCentury: *body.Strikes},
	}, nil
}
