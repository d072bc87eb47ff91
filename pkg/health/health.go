// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package health holds serializable point-in-time snapshots of the
// resiliency machinery guarding each provider. The snapshots are exposed on
// the operator API and never alias live internal state.
package health

import "time"

// BreakerMetrics is the current circuit breaker state for one provider.
type BreakerMetrics struct {
	State               string     `json:"state"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
	NextRetryAt         *time.Time `json:"next_retry_at,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
	Available           bool       `json:"available"`
}

// WindowMetrics is the usage of one fixed rate-limit window.
type WindowMetrics struct {
	Limit   int       `json:"limit"`
	Used    int       `json:"used"`
	ResetAt time.Time `json:"reset_at"`
}

// LimiterMetrics groups the three quota windows for one provider.
type LimiterMetrics struct {
	Minute WindowMetrics `json:"minute"`
	Hour   WindowMetrics `json:"hour"`
	Day    WindowMetrics `json:"day"`
}

// ProviderHealth is the combined operator view of one provider.
type ProviderHealth struct {
	Provider string          `json:"provider"`
	Category string          `json:"category"`
	Enabled  bool            `json:"enabled"`
	Breaker  *BreakerMetrics `json:"breaker,omitempty"`
	Limiter  *LimiterMetrics `json:"limiter,omitempty"`
}
