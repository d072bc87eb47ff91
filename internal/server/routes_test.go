// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/terravet/terravet/internal/provider"
	"github.com/terravet/terravet/internal/server"
	"github.com/terravet/terravet/internal/store"
	tverr "github.com/terravet/terravet/pkg/errors"
	"github.com/terravet/terravet/pkg/health"
	"github.com/terravet/terravet/pkg/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAssessor struct {
	results []provider.Result
}

func (m *mockAssessor) Assess(_ context.Context, q provider.Query) ([]provider.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return m.results, nil
}

type mockScorer struct {
	report report.Report
}

func (m *mockScorer) Report(provider.Query, []provider.Result) report.Report {
	return m.report
}

type mockHistory struct {
	saved map[string]*store.Assessment
}

func newMockHistory() *mockHistory {
	return &mockHistory{saved: make(map[string]*store.Assessment)}
}

func (m *mockHistory) Save(_ context.Context, a *store.Assessment) error {
	if a.ID == "" {
		a.ID = "asm-1"
	}
	a.Report.ID = a.ID
	m.saved[a.ID] = a
	return nil
}

func (m *mockHistory) Get(_ context.Context, id string) (*store.Assessment, error) {
	a, ok := m.saved[id]
	if !ok {
		return nil, tverr.Errorf(tverr.CodeStoreAssessmentNotFound, "assessment %s", id)
	}
	return a, nil
}

func (m *mockHistory) List(_ context.Context, _ store.ListOpts) ([]*store.Assessment, error) {
	out := make([]*store.Assessment, 0, len(m.saved))
	for _, a := range m.saved {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockHistory) Close() error { return nil }

type mockHealth struct{}

func (m *mockHealth) Providers() []health.ProviderHealth {
	return []health.ProviderHealth{
		{Provider: "fema-nfhl", Category: "flood", Enabled: true},
		{Provider: "epa-frs", Category: "contamination", Enabled: true},
	}
}

func newTestServer(t *testing.T, svc *server.Services) *server.Server {
	t.Helper()
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"})
	require.NoError(t, err)
	srv.RegisterServices(svc)
	return srv
}

func defaultServices() *server.Services {
	return &server.Services{
		Assessor: &mockAssessor{results: []provider.Result{
			{Provider: "fema-nfhl", Category: provider.CategoryFlood, Status: provider.StatusOK},
		}},
		Scorer: &mockScorer{report: report.Report{
			Score:          0.95,
			Recommendation: report.RecommendationApprove,
			Confidence:     100,
		}},
		History: newMockHistory(),
		Health:  &mockHealth{},
	}
}

const validBody = `{"latitude": 40.5187, "longitude": -78.3947, "constructionYear": 1955, "belowGrade": true, "state": "PA"}`

func TestCreateAssessment(t *testing.T) {
	svc := defaultServices()
	srv := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rep report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 0.95, rep.Score)
	assert.Equal(t, report.RecommendationApprove, rep.Recommendation)
	assert.Equal(t, "asm-1", rep.ID, "report persisted and id echoed back")
}

func TestCreateAssessmentRejectsOutOfRangeLatitude(t *testing.T) {
	srv := newTestServer(t, defaultServices())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments",
		strings.NewReader(`{"latitude": 123.0, "longitude": -78.0}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateAssessmentWithoutHistory(t *testing.T) {
	svc := defaultServices()
	svc.History = nil
	srv := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var rep report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Empty(t, rep.ID, "no history, no id")
}

func TestGetAssessment(t *testing.T) {
	svc := defaultServices()
	srv := newTestServer(t, svc)

	// Seed one assessment through the API.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/assessments/asm-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rep report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "asm-1", rep.ID)
}

func TestGetAssessmentNotFound(t *testing.T) {
	srv := newTestServer(t, defaultServices())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/assessments/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryEndpointsUnavailableWhenDisabled(t *testing.T) {
	svc := defaultServices()
	svc.History = nil
	srv := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/assessments/asm-1", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/assessments", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListProviders(t *testing.T) {
	srv := newTestServer(t, defaultServices())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var providers []health.ProviderHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &providers))
	require.Len(t, providers, 2)
	assert.Equal(t, "fema-nfhl", providers[0].Provider)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, defaultServices())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}
