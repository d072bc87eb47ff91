// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package cache provides the per-provider response cache with
// stale-while-revalidate semantics. Concurrent requests for the same
// uncached key are coalesced into a single upstream fetch, so a burst of
// assessments for one location cannot stampede a provider.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/terravet/terravet/internal/provider"
)

// FetchFunc performs the guarded upstream call on a miss. It is the
// breaker-wrapped, rate-limited adapter call supplied by the orchestrator.
type FetchFunc func(ctx context.Context) (*provider.Payload, error)

type entry struct {
	payload    *provider.Payload
	fetchedAt  time.Time
	expiresAt  time.Time
	staleUntil time.Time
}

// Options configures the cache.
type Options struct {
	// SweepInterval is how often the background sweep evicts entries past
	// their stale window. Zero disables the sweep; entries are still
	// evicted lazily on access.
	SweepInterval time.Duration
}

// Cache stores provider payloads keyed by provider id + normalized query.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group
	nowFunc func() time.Time

	// onRefresh, when set, is called after a background refresh attempt
	// completes (for testing).
	onRefresh func(key string, err error)

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a cache and starts the background sweep when configured.
func New(opts Options) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		nowFunc: time.Now,
		done:    make(chan struct{}),
	}
	if opts.SweepInterval > 0 {
		go c.sweep(opts.SweepInterval)
	}
	return c
}

// SetNowFunc overrides the time source (for testing).
func (c *Cache) SetNowFunc(fn func() time.Time) {
	c.mu.Lock()
	c.nowFunc = fn
	c.mu.Unlock()
}

// SetOnRefresh installs a hook fired after each background refresh (for testing).
func (c *Cache) SetOnRefresh(fn func(key string, err error)) {
	c.mu.Lock()
	c.onRefresh = fn
	c.mu.Unlock()
}

// Stop terminates the background sweep.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// Key builds the cache key for a provider call: the provider id plus a
// hash of the normalized query. Coordinates are rounded to four decimal
// places (roughly 11 meters) so adjacent lookups share entries.
func Key(providerID string, q provider.Query) string {
	radius := q.RadiusMeters
	if radius == 0 {
		radius = provider.DefaultRadiusMeters
	}
	normalized := fmt.Sprintf("%.4f|%.4f|%.0f|%d|%t|%s|%s|%s",
		q.Latitude, q.Longitude, radius,
		q.ConstructionYear, q.BelowGrade, q.PriorLandUse,
		strings.ToUpper(q.County), strings.ToUpper(q.State))
	sum := sha256.Sum256([]byte(normalized))
	return providerID + ":" + hex.EncodeToString(sum[:8])
}

// GetOrFetch returns the cached payload when fresh, serves a stale payload
// while triggering a background refresh when within the stale window, and
// otherwise fetches synchronously. The returned status distinguishes the
// three paths: StatusOK (fetched now), StatusCached, StatusStale.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl, staleWindow time.Duration, fetch FetchFunc) (*provider.Payload, provider.Status, error) {
	c.mu.Lock()
	now := c.nowFunc()
	e, ok := c.entries[key]
	if ok && !now.Before(e.staleUntil) {
		// Past the stale window: the entry is unusable even as a fallback.
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if ok {
		if now.Before(e.expiresAt) {
			return e.payload, provider.StatusCached, nil
		}
		// Stale but serveable: hand it back and revalidate off the request
		// path. The refresh runs through the same guarded fetch, so it is
		// still subject to the rate limiter and circuit breaker.
		c.refreshAsync(ctx, key, ttl, staleWindow, fetch)
		return e.payload, provider.StatusStale, nil
	}

	payload, err, _ := c.group.Do(key, func() (any, error) {
		p, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, p, ttl, staleWindow)
		return p, nil
	})
	if err != nil {
		return nil, "", err
	}
	return payload.(*provider.Payload), provider.StatusOK, nil
}

func (c *Cache) store(key string, p *provider.Payload, ttl, staleWindow time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowFunc()
	c.entries[key] = &entry{
		payload:    p,
		fetchedAt:  now,
		expiresAt:  now.Add(ttl),
		staleUntil: now.Add(staleWindow),
	}
}

func (c *Cache) refreshAsync(ctx context.Context, key string, ttl, staleWindow time.Duration, fetch FetchFunc) {
	// Detach from the caller's deadline: the caller already has its answer.
	bg := context.WithoutCancel(ctx)
	go func() {
		_, err, _ := c.group.Do(key, func() (any, error) {
			p, err := fetch(bg)
			if err != nil {
				return nil, err
			}
			c.store(key, p, ttl, staleWindow)
			return p, nil
		})
		if err != nil {
			slog.Debug("background cache refresh failed", "key", key, "error", err)
		}
		c.mu.RLock()
		hook := c.onRefresh
		c.mu.RUnlock()
		if hook != nil {
			hook(key, err)
		}
	}()
}

// Len returns the number of live entries (for tests and metrics).
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			now := c.nowFunc()
			evicted := 0
			for k, e := range c.entries {
				if !now.Before(e.staleUntil) {
					delete(c.entries, k)
					evicted++
				}
			}
			c.mu.Unlock()
			if evicted > 0 {
				slog.Debug("cache sweep evicted expired entries", "evicted", evicted)
			}
		case <-c.done:
			return
		}
	}
}
