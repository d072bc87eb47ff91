// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package server

import (
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	tverr "github.com/terravet/terravet/pkg/errors"
)

// RateLimitConfig configures per-IP rate limiting on the HTTP surface.
// This is separate from the per-provider quota limiter: it protects this
// service from abusive clients, not the upstreams from this service.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate per IP. Zero disables
	// limiting.
	RequestsPerSecond float64
	// Burst is the maximum burst size per IP.
	Burst int
	// MaxVisitors caps the number of unique IPs tracked concurrently; the
	// oldest entries are evicted during cleanup. Zero picks the default of
	// 10000.
	MaxVisitors int
}

// Validate checks the RateLimitConfig and applies defaults.
func (c *RateLimitConfig) Validate() error {
	if c.RequestsPerSecond > 0 && c.Burst <= 0 {
		return tverr.Errorf(tverr.CodeServerConfigInvalid,
			"rate limit burst must be positive when rate is set (got burst=%d, rate=%g)",
			c.Burst, c.RequestsPerSecond)
	}
	if c.RequestsPerSecond < 0 {
		return tverr.Errorf(tverr.CodeServerConfigInvalid,
			"rate limit requests per second must not be negative (got %g)",
			c.RequestsPerSecond)
	}
	if c.MaxVisitors < 0 {
		return tverr.Errorf(tverr.CodeServerConfigInvalid,
			"rate limit max visitors must not be negative (got %d)", c.MaxVisitors)
	}
	if c.MaxVisitors == 0 {
		c.MaxVisitors = 10000
	}
	return nil
}

type visitor struct {
	tokens     float64
	lastSeen   time.Time
	lastRefill time.Time
}

type visitorMap struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     float64
	burst    float64
	max      int
}

// allow takes one token from the visitor's bucket, refilling for elapsed
// time first.
func (m *visitorMap) allow(ip string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	v, ok := m.visitors[ip]
	if !ok {
		v = &visitor{tokens: m.burst, lastRefill: now}
		m.visitors[ip] = v
	}
	v.lastSeen = now

	v.tokens += now.Sub(v.lastRefill).Seconds() * m.rate
	if v.tokens > m.burst {
		v.tokens = m.burst
	}
	v.lastRefill = now

	if v.tokens < 1 {
		return false
	}
	v.tokens--
	return true
}

// cleanup drops stale visitors and enforces the size cap, oldest first.
func (m *visitorMap) cleanup() {
	const staleThreshold = 10 * time.Minute

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	type seen struct {
		ip       string
		lastSeen time.Time
	}
	live := make([]seen, 0, len(m.visitors))
	for ip, v := range m.visitors {
		if now.Sub(v.lastSeen) > staleThreshold {
			delete(m.visitors, ip)
		} else {
			live = append(live, seen{ip: ip, lastSeen: v.lastSeen})
		}
	}

	if m.max > 0 && len(live) > m.max {
		slices.SortFunc(live, func(a, b seen) int { return a.lastSeen.Compare(b.lastSeen) })
		toEvict := len(live) - m.max
		for i := 0; i < toEvict; i++ {
			delete(m.visitors, live[i].ip)
		}
		slog.Warn("rate limiter visitor map cap enforced",
			"evicted", toEvict, "max_visitors", m.max, "remaining", len(m.visitors))
	}
}

// rateLimitMiddleware enforces per-IP rate limits. A zero rate yields a
// pass-through middleware. The done channel stops the cleanup goroutine on
// shutdown.
func rateLimitMiddleware(cfg RateLimitConfig, done <-chan struct{}) func(http.Handler) http.Handler {
	if cfg.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	m := &visitorMap{
		visitors: make(map[string]*visitor),
		rate:     cfg.RequestsPerSecond,
		burst:    float64(cfg.Burst),
		max:      cfg.MaxVisitors,
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.cleanup()
			case <-done:
				return
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Strip the port so the limit applies per IP, not per
			// connection.
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !m.allow(ip) {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				if _, err := w.Write([]byte(`{"error":"rate limit exceeded"}`)); err != nil {
					slog.Warn("failed to write rate limit response", "error", err)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
