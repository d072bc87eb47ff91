// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package femaflood queries the FEMA National Flood Hazard Layer for the
// flood zone designation of a parcel.
package femaflood

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/terravet/terravet/internal/provider"
	tverr "github.com/terravet/terravet/pkg/errors"
)

const defaultBaseURL = "https://hazards.fema.gov/nfhlv2/rest"

// ProviderID is the registry id of this adapter.
const ProviderID = "fema-nfhl"

// Config holds FEMA NFHL adapter configuration.
type Config struct {
	BaseURL    string // optional, useful for testing against a mock server
	HTTPClient *http.Client
}

// Adapter implements provider.Adapter against the NFHL identify endpoint.
type Adapter struct {
	baseURL string
	client  *http.Client
}

// New creates a FEMA flood adapter.
func New(cfg Config) *Adapter {
	base := defaultBaseURL
	if cfg.BaseURL != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Adapter{baseURL: base, client: cfg.HTTPClient}
}

func (a *Adapter) ID() string { return ProviderID }

func (a *Adapter) Category() provider.Category { return provider.CategoryFlood }

// identifyResponse is the subset of the NFHL identify payload we read.
type identifyResponse struct {
	Results []struct {
		Attributes struct {
			FloodZone   string `json:"FLD_ZONE"`
			ZoneSubtype string `json:"ZONE_SUBTY"`
		} `json:"attributes"`
	} `json:"results"`
}

// Fetch resolves the flood zone at the query point. A point outside every
// mapped hazard polygon is zone X (minimal hazard), not an error.
func (a *Adapter) Fetch(ctx context.Context, q provider.Query) (*provider.Payload, error) {
	params := url.Values{}
	params.Set("geometry", fmt.Sprintf("%.6f,%.6f", q.Longitude, q.Latitude))
	params.Set("geometryType", "esriGeometryPoint")
	params.Set("layers", "28") // flood hazard zones layer
	params.Set("f", "json")

	var body identifyResponse
	endpoint := a.baseURL + "/services/public/NFHL/MapServer/identify?" + params.Encode()
	if err := provider.DoJSON(ctx, a.client, ProviderID, endpoint, &body); err != nil {
		return nil, err
	}

	zone := "X"
	floodway := false
	for _, r := range body.Results {
		z := strings.ToUpper(strings.TrimSpace(r.Attributes.FloodZone))
		if z == "" {
			continue
		}
		zone = z
		floodway = strings.Contains(strings.ToUpper(r.Attributes.ZoneSubtype), "FLOODWAY")
		break
	}
	if !validZone(zone) {
		return nil, tverr.Errorf(tverr.CodeProviderResponseInvalid, "nfhl returned unknown flood zone %q", zone)
	}

	return &provider.Payload{
		Category: provider.CategoryFlood,
		Flood:    &provider.FloodZone{Zone: zone, InFloodway: floodway},
	}, nil
}

func validZone(zone string) bool {
	switch zone {
	case "X", "B", "C", "A", "AE", "AH", "AO", "AR", "A99", "V", "VE", "D":
		return true
	}
	return false
}
