// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package ratelimit enforces fixed per-provider call quotas over minute,
// hour, and day windows. Counters live for the process lifetime, are
// created lazily on first use, and are guarded per provider so unrelated
// providers never serialize on each other.
package ratelimit

import (
	"sync"
	"time"

	"github.com/terravet/terravet/internal/provider"
	"github.com/terravet/terravet/pkg/health"
)

type window struct {
	limit   int
	length  time.Duration
	count   int
	resetAt time.Time
}

// reset lazily zeroes the window when its boundary has passed, advancing
// resetAt by whole window lengths so boundaries stay aligned.
func (w *window) reset(now time.Time) {
	if w.limit <= 0 || now.Before(w.resetAt) {
		return
	}
	w.count = 0
	for !w.resetAt.After(now) {
		w.resetAt = w.resetAt.Add(w.length)
	}
}

// full reports whether the window is at capacity. Zero limit means the
// window is unlimited.
func (w *window) full() bool {
	return w.limit > 0 && w.count >= w.limit
}

type providerWindows struct {
	mu      sync.Mutex
	minute  window
	hour    window
	day     window
}

// Limiter tracks quota windows for every provider.
type Limiter struct {
	mu        sync.Mutex
	providers map[string]*providerWindows
	nowFunc   func() time.Time
}

// New creates an empty limiter.
func New() *Limiter {
	return &Limiter{
		providers: make(map[string]*providerWindows),
		nowFunc:   time.Now,
	}
}

// SetNowFunc overrides the time source (for testing).
func (l *Limiter) SetNowFunc(fn func() time.Time) {
	l.mu.Lock()
	l.nowFunc = fn
	l.mu.Unlock()
}

func (l *Limiter) get(id string, limits provider.RateWindows) (*providerWindows, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	pw, ok := l.providers[id]
	if !ok {
		pw = &providerWindows{
			minute: window{limit: limits.PerMinute, length: time.Minute, resetAt: now.Add(time.Minute)},
			hour:   window{limit: limits.PerHour, length: time.Hour, resetAt: now.Add(time.Hour)},
			day:    window{limit: limits.PerDay, length: 24 * time.Hour, resetAt: now.Add(24 * time.Hour)},
		}
		l.providers[id] = pw
	}
	return pw, now
}

// Allow reports whether a call for the provider fits within every window.
// On permit, all three counters are incremented. On reject, retryAfter is
// the time until the most distant exhausted window resets.
func (l *Limiter) Allow(id string, limits provider.RateWindows) (bool, time.Duration) {
	pw, now := l.get(id, limits)

	pw.mu.Lock()
	defer pw.mu.Unlock()

	windows := []*window{&pw.minute, &pw.hour, &pw.day}
	for _, w := range windows {
		w.reset(now)
	}

	var retryAfter time.Duration
	for _, w := range windows {
		if w.full() {
			if wait := w.resetAt.Sub(now); wait > retryAfter {
				retryAfter = wait
			}
		}
	}
	if retryAfter > 0 {
		return false, retryAfter
	}

	for _, w := range windows {
		w.count++
	}
	return true, 0
}

// Snapshot returns the current window usage for a provider, or nil if the
// provider has not been seen yet.
func (l *Limiter) Snapshot(id string) *health.LimiterMetrics {
	l.mu.Lock()
	pw, ok := l.providers[id]
	now := l.nowFunc()
	l.mu.Unlock()
	if !ok {
		return nil
	}

	pw.mu.Lock()
	defer pw.mu.Unlock()
	for _, w := range []*window{&pw.minute, &pw.hour, &pw.day} {
		w.reset(now)
	}

	snap := func(w window) health.WindowMetrics {
		return health.WindowMetrics{Limit: w.limit, Used: w.count, ResetAt: w.resetAt}
	}
	return &health.LimiterMetrics{
		Minute: snap(pw.minute),
		Hour:   snap(pw.hour),
		Day:    snap(pw.day),
	}
}
