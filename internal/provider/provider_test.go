// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package provider_test

import (
	"testing"

	"github.com/terravet/terravet/internal/provider"
	tverr "github.com/terravet/terravet/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuery() provider.Query {
	return provider.Query{
		Latitude:         40.5187,
		Longitude:        -78.3947,
		RadiusMeters:     1609,
		ConstructionYear: 1955,
		BelowGrade:       true,
		PriorLandUse:     provider.LandUseResidential,
		County:           "Blair",
		State:            "PA",
		CoastDistanceKm:  350,
	}
}

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*provider.Query)
		wantErr bool
	}{
		{"valid", func(*provider.Query) {}, false},
		{"latitude too low", func(q *provider.Query) { q.Latitude = -90.01 }, true},
		{"latitude too high", func(q *provider.Query) { q.Latitude = 91 }, true},
		{"longitude out of range", func(q *provider.Query) { q.Longitude = 181 }, true},
		{"negative radius", func(q *provider.Query) { q.RadiusMeters = -1 }, true},
		{"negative year", func(q *provider.Query) { q.ConstructionYear = -5 }, true},
		{"future year", func(q *provider.Query) { q.ConstructionYear = 3000 }, true},
		{"unknown land use", func(q *provider.Query) { q.PriorLandUse = "volcano" }, true},
		{"zero year means unknown", func(q *provider.Query) { q.ConstructionYear = 0 }, false},
		{"empty land use allowed", func(q *provider.Query) { q.PriorLandUse = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuery()
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, tverr.IsInvalidInput(err), "validation errors must be the fatal input class")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatusScored(t *testing.T) {
	scored := []provider.Status{provider.StatusOK, provider.StatusCached, provider.StatusStale}
	for _, s := range scored {
		assert.True(t, s.Scored(), "%s should be scored", s)
	}

	unscored := []provider.Status{
		provider.StatusRateLimited, provider.StatusCircuitOpen, provider.StatusTimeout,
		provider.StatusError, provider.StatusSkipped,
	}
	for _, s := range unscored {
		assert.False(t, s.Scored(), "%s should not be scored", s)
	}
}

func TestCategoriesAllValid(t *testing.T) {
	for _, c := range provider.Categories() {
		assert.True(t, c.Valid(), "%s", c)
	}
	assert.False(t, provider.Category("plague").Valid())
}

func TestNearestSevere(t *testing.T) {
	sites := provider.ContaminationSites{Sites: []provider.ContaminationSite{
		{Name: "dump", DistanceMeters: 900, Severe: false},
		{Name: "npl-a", DistanceMeters: 500, Severe: true},
		{Name: "npl-b", DistanceMeters: 300, Severe: true},
	}}

	d, ok := sites.NearestSevere()
	require.True(t, ok)
	assert.Equal(t, 300.0, d)

	none := provider.ContaminationSites{Sites: []provider.ContaminationSite{
		{Name: "dump", DistanceMeters: 10, Severe: false},
	}}
	_, ok = none.NearestSevere()
	assert.False(t, ok)
}

func TestNearestSevereAtZeroDistance(t *testing.T) {
	// Distance zero means the parcel itself is the registered site; it must
	// not be confused with "no severe site found".
	onSite := provider.ContaminationSites{Sites: []provider.ContaminationSite{
		{Name: "npl", DistanceMeters: 0, Severe: true},
	}}
	d, ok := onSite.NearestSevere()
	require.True(t, ok)
	assert.Equal(t, 0.0, d)
}
