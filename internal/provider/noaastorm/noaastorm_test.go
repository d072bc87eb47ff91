// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package noaastorm_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/terravet/terravet/internal/provider"
	"github.com/terravet/terravet/internal/provider/noaastorm"
	tverr "github.com/terravet/terravet/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuery() provider.Query {
	return provider.Query{Latitude: 25.76, Longitude: -80.19}
}

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "lat=")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchMapsStrikeFrequency(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"strikes_per_century":22}`)

	a := noaastorm.New(noaastorm.Config{BaseURL: srv.URL})
	p, err := a.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	require.NotNil(t, p.Hurricane)
	assert.Equal(t, 22, p.Hurricane.StrikesPerCentury)
	assert.Equal(t, provider.CategoryHurricane, p.Category)
}

func TestFetchMissingStrikesRejected(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{}`)

	a := noaastorm.New(noaastorm.Config{BaseURL: srv.URL})
	_, err := a.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.True(t, tverr.IsInvalidResponse(err))
}

func TestFetchNegativeStrikesRejected(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"strikes_per_century":-3}`)

	a := noaastorm.New(noaastorm.Config{BaseURL: srv.URL})
	_, err := a.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.True(t, tverr.IsInvalidResponse(err))
}
