// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/terravet/terravet/internal/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     server.RateLimitConfig
		wantErr bool
	}{
		{"disabled", server.RateLimitConfig{}, false},
		{"valid", server.RateLimitConfig{RequestsPerSecond: 10, Burst: 20}, false},
		{"rate without burst", server.RateLimitConfig{RequestsPerSecond: 10}, true},
		{"negative rate", server.RateLimitConfig{RequestsPerSecond: -1, Burst: 5}, true},
		{"negative max visitors", server.RateLimitConfig{RequestsPerSecond: 1, Burst: 1, MaxVisitors: -1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRateLimitDefaultMaxVisitors(t *testing.T) {
	cfg := server.RateLimitConfig{RequestsPerSecond: 1, Burst: 1}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10000, cfg.MaxVisitors)
}

func TestPerIPRateLimitEnforced(t *testing.T) {
	srv, err := server.New(server.Config{
		ListenAddr: "127.0.0.1:0",
		RateLimit:  server.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2},
	})
	require.NoError(t, err)
	srv.RegisterServices(defaultServices())

	get := func(remoteAddr string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = remoteAddr
		srv.Handler().ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, get("10.0.0.1:2222"), "same IP, different port shares the bucket")
	assert.Equal(t, http.StatusTooManyRequests, get("10.0.0.1:3333"))

	assert.Equal(t, http.StatusOK, get("10.0.0.2:1111"), "other IPs keep their own bucket")
}
