// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package epafrs queries the EPA Facility Registry Service for registered
// contamination sites near a parcel.
package epafrs

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/terravet/terravet/internal/provider"
	tverr "github.com/terravet/terravet/pkg/errors"
)

const defaultBaseURL = "https://ofmpub.epa.gov/frs_public2"

// ProviderID is the registry id of this adapter.
const ProviderID = "epa-frs"

// Interest types that mark a site as severe contamination. NPL is the
// Superfund National Priorities List.
var severeInterests = map[string]bool{
	"SUPERFUND NPL":          true,
	"RCRA CORRECTIVE ACTION": true,
	"BROWNFIELD SITE":        true,
}

// Config holds EPA FRS adapter configuration.
type Config struct {
	BaseURL    string // optional, useful for testing against a mock server
	APIKey     string
	HTTPClient *http.Client
}

// Adapter implements provider.Adapter against the FRS facility search.
type Adapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates an EPA FRS adapter.
func New(cfg Config) *Adapter {
	base := defaultBaseURL
	if cfg.BaseURL != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Adapter{baseURL: base, apiKey: cfg.APIKey, client: cfg.HTTPClient}
}

func (a *Adapter) ID() string { return ProviderID }

func (a *Adapter) Category() provider.Category { return provider.CategoryContamination }

type facilityResponse struct {
	Results struct {
		Facilities []struct {
			Name         string `json:"FacilityName"`
			Distance     string `json:"Distance"` // miles, string-typed upstream
			InterestType string `json:"InterestType"`
		} `json:"FRSFacility"`
	} `json:"Results"`
}

// Fetch lists registered facilities within the query radius and classifies
// their severity by EPA interest type.
func (a *Adapter) Fetch(ctx context.Context, q provider.Query) (*provider.Payload, error) {
	radius := q.RadiusMeters
	if radius == 0 {
		radius = provider.DefaultRadiusMeters
	}

	endpoint := fmt.Sprintf(
		"%s/frs_rest_services.get_facilities?latitude83=%.6f&longitude83=%.6f&search_radius=%.2f&output=JSON",
		a.baseURL, q.Latitude, q.Longitude, radius/1609.34)
	if a.apiKey != "" {
		endpoint += "&api_key=" + a.apiKey
	}

	var body facilityResponse
	if err := provider.DoJSON(ctx, a.client, ProviderID, endpoint, &body); err != nil {
		return nil, err
	}

	sites := make([]provider.ContaminationSite, 0, len(body.Results.Facilities))
	for _, f := range body.Results.Facilities {
		miles, err := strconv.ParseFloat(strings.TrimSpace(f.Distance), 64)
		if err != nil || miles < 0 {
			return nil, tverr.Errorf(tverr.CodeProviderResponseInvalid,
				"frs facility %q has invalid distance %q", f.Name, f.Distance)
		}
		sites = append(sites, provider.ContaminationSite{
			Name:           f.Name,
			DistanceMeters: miles * 1609.34,
			Severe:         severeInterests[strings.ToUpper(strings.TrimSpace(f.InterestType))],
		})
	}

	return &provider.Payload{
		Category:      provider.CategoryContamination,
		Contamination: &provider.ContaminationSites{Sites: sites},
	}, nil
}
