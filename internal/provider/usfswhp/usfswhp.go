// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package usfswhp queries the US Forest Service Wildfire Hazard Potential
// layer for the hazard class at a location.
package usfswhp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/terravet/terravet/internal/provider"
	tverr "github.com/terravet/terravet/pkg/errors"
)

const defaultBaseURL = "https://apps.fs.usda.gov/fsgisx01/rest"

// ProviderID is the registry id of this adapter.
const ProviderID = "usfs-whp"

// Config holds USFS adapter configuration.
type Config struct {
	BaseURL    string // optional, useful for testing against a mock server
	HTTPClient *http.Client
}

// Adapter implements provider.Adapter against the WHP raster identify.
type Adapter struct {
	baseURL string
	client  *http.Client
}

// New creates a wildfire hazard adapter.
func New(cfg Config) *Adapter {
	base := defaultBaseURL
	if cfg.BaseURL != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Adapter{baseURL: base, client: cfg.HTTPClient}
}

func (a *Adapter) ID() string { return ProviderID }

func (a *Adapter) Category() provider.Category { return provider.CategoryWildfire }

type whpResponse struct {
	Value *int `json:"value"`
}

// Fetch resolves the wildfire hazard potential class (0 to 5) at the point.
func (a *Adapter) Fetch(ctx context.Context, q provider.Query) (*provider.Payload, error) {
	endpoint := fmt.Sprintf("%s/services/wo_nfs_whp/ImageServer/identify?geometry=%.6f,%.6f&f=json",
		a.baseURL, q.Longitude, q.Latitude)

	var body whpResponse
	if err := provider.DoJSON(ctx, a.client, ProviderID, endpoint, &body); err != nil {
		return nil, err
	}

	if body.Value == nil {
		return nil, tverr.New(tverr.CodeProviderResponseInvalid, "whp response missing value")
	}
	class := *body.Value
	if class < 0 || class > 5 {
		return nil, tverr.Errorf(tverr.CodeProviderResponseInvalid, "whp class %d outside [0, 5]", class)
	}

	return &provider.Payload{
		Category: provider.CategoryWildfire,
		Wildfire: &provider.WildfireRisk{HazardPotential: class},
	}, nil
}
