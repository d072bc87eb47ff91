// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/terravet/terravet/internal/provider"
	"github.com/terravet/terravet/internal/store"
	"github.com/terravet/terravet/internal/store/sqlite"
	tverr "github.com/terravet/terravet/pkg/errors"
	"github.com/terravet/terravet/pkg/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.AssessmentStore {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "assessments.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleAssessment(createdAt time.Time) *store.Assessment {
	return &store.Assessment{
		Query: provider.Query{
			Latitude: 40.5187, Longitude: -78.3947,
			ConstructionYear: 1955, BelowGrade: true,
			County: "BLAIR", State: "PA",
		},
		Report: report.Report{
			Score:          0.52,
			Recommendation: report.RecommendationCaution,
			Confidence:     100,
			Hazards: []report.Hazard{
				{Category: "flood", Deduction: 0.25, Reason: "parcel lies in FEMA flood zone AE", Cost: 1800},
				{Category: "hazmat", Deduction: 0.10, Reason: "construction era indicates likely lead paint and asbestos", Cost: 20000},
			},
			TotalEstimatedCost: 21800,
			ProviderStatuses: []report.ProviderStatus{
				{Provider: "fema-nfhl", Status: "ok", LatencyMs: 120},
				{Provider: "usgs-seismic", Status: "timeout"},
			},
			CreatedAt: createdAt,
		},
	}
}

func TestSaveAssignsIDAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := sampleAssessment(time.Now().UTC())
	require.NoError(t, s.Save(ctx, a))
	require.NotEmpty(t, a.ID)
	assert.Equal(t, a.ID, a.Report.ID)

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Query, got.Query)
	assert.Equal(t, a.Report.Score, got.Report.Score)
	assert.Equal(t, a.Report.Recommendation, got.Report.Recommendation)
	assert.Equal(t, a.Report.Hazards, got.Report.Hazards)
	assert.Equal(t, a.Report.ProviderStatuses, got.Report.ProviderStatuses)
	assert.Equal(t, a.Report.TotalEstimatedCost, got.Report.TotalEstimatedCost)
}

func TestGetUnknownIDIsNotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.Get(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.True(t, tverr.IsNotFound(err))
	assert.Equal(t, tverr.CodeStoreAssessmentNotFound, tverr.CodeOf(err))
}

func TestSaveNilAssessmentRejected(t *testing.T) {
	s := newStore(t)
	err := s.Save(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, tverr.IsInvalidInput(err))
}

func TestListNewestFirstWithPaging(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		a := sampleAssessment(base.Add(time.Duration(i) * time.Hour))
		require.NoError(t, s.Save(ctx, a))
		ids = append(ids, a.ID)
	}

	all, err := s.List(ctx, store.ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, ids[4], all[0].ID, "newest assessment listed first")
	assert.Equal(t, ids[0], all[4].ID)

	page, err := s.List(ctx, store.ListOpts{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].ID)
	assert.Equal(t, ids[2], page[1].ID)
}
