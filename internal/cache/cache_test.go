// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/terravet/terravet/internal/cache"
	"github.com/terravet/terravet/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floodPayload(zone string) *provider.Payload {
	return &provider.Payload{
		Category: provider.CategoryFlood,
		Flood:    &provider.FloodZone{Zone: zone},
	}
}

func countingFetch(calls *atomic.Int64, p *provider.Payload) cache.FetchFunc {
	return func(context.Context) (*provider.Payload, error) {
		calls.Add(1)
		return p, nil
	}
}

func TestFreshHitSkipsFetch(t *testing.T) {
	c := cache.New(cache.Options{})
	defer c.Stop()

	var calls atomic.Int64
	fetch := countingFetch(&calls, floodPayload("X"))

	p, status, err := c.GetOrFetch(context.Background(), "k", time.Hour, 24*time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, provider.StatusOK, status)
	assert.Equal(t, "X", p.Flood.Zone)

	p, status, err = c.GetOrFetch(context.Background(), "k", time.Hour, 24*time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, provider.StatusCached, status)
	assert.Equal(t, "X", p.Flood.Zone)
	assert.Equal(t, int64(1), calls.Load(), "second call within ttl must not fetch")
}

func TestStaleServesOldValueAndRefreshes(t *testing.T) {
	c := cache.New(cache.Options{})
	defer c.Stop()
	now := time.Now()
	c.SetNowFunc(func() time.Time { return now })

	refreshed := make(chan error, 1)
	c.SetOnRefresh(func(_ string, err error) { refreshed <- err })

	var calls atomic.Int64
	_, _, err := c.GetOrFetch(context.Background(), "k", time.Hour, 24*time.Hour,
		countingFetch(&calls, floodPayload("X")))
	require.NoError(t, err)

	// Past TTL, within the stale window.
	now = now.Add(2 * time.Hour)
	p, status, err := c.GetOrFetch(context.Background(), "k", time.Hour, 24*time.Hour,
		countingFetch(&calls, floodPayload("AE")))
	require.NoError(t, err)
	assert.Equal(t, provider.StatusStale, status)
	assert.Equal(t, "X", p.Flood.Zone, "stale read returns the old value")

	select {
	case err := <-refreshed:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("background refresh never ran")
	}
	assert.Equal(t, int64(2), calls.Load())

	// The refreshed value is now fresh.
	p, status, err = c.GetOrFetch(context.Background(), "k", time.Hour, 24*time.Hour,
		countingFetch(&calls, floodPayload("V")))
	require.NoError(t, err)
	assert.Equal(t, provider.StatusCached, status)
	assert.Equal(t, "AE", p.Flood.Zone)
}

func TestPastStaleWindowFetchesSynchronously(t *testing.T) {
	c := cache.New(cache.Options{})
	defer c.Stop()
	now := time.Now()
	c.SetNowFunc(func() time.Time { return now })

	var calls atomic.Int64
	_, _, err := c.GetOrFetch(context.Background(), "k", time.Hour, 24*time.Hour,
		countingFetch(&calls, floodPayload("X")))
	require.NoError(t, err)

	now = now.Add(25 * time.Hour)
	p, status, err := c.GetOrFetch(context.Background(), "k", time.Hour, 24*time.Hour,
		countingFetch(&calls, floodPayload("AE")))
	require.NoError(t, err)
	assert.Equal(t, provider.StatusOK, status, "expired entries are never served")
	assert.Equal(t, "AE", p.Flood.Zone)
	assert.Equal(t, int64(2), calls.Load())
}

func TestFetchErrorPropagates(t *testing.T) {
	c := cache.New(cache.Options{})
	defer c.Stop()

	boom := errors.New("upstream down")
	_, _, err := c.GetOrFetch(context.Background(), "k", time.Hour, 24*time.Hour,
		func(context.Context) (*provider.Payload, error) { return nil, boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len(), "errors are not cached")
}

func TestConcurrentMissesCoalesce(t *testing.T) {
	c := cache.New(cache.Options{})
	defer c.Stop()

	var calls atomic.Int64
	release := make(chan struct{})
	fetch := func(context.Context) (*provider.Payload, error) {
		calls.Add(1)
		<-release
		return floodPayload("X"), nil
	}

	const goroutines = 20
	var wg sync.WaitGroup
	statuses := make([]provider.Status, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, status, err := c.GetOrFetch(context.Background(), "k", time.Hour, 24*time.Hour, fetch)
			assert.NoError(t, err)
			statuses[i] = status
		}(i)
	}

	// Give the goroutines time to pile onto the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "thundering herd must collapse to one fetch")
	for _, s := range statuses {
		assert.Equal(t, provider.StatusOK, s)
	}
}

func TestKeyNormalization(t *testing.T) {
	base := provider.Query{Latitude: 40.51871, Longitude: -78.39472, RadiusMeters: 1609, State: "pa"}

	nearby := base
	nearby.Latitude = 40.51873 // within rounding distance
	assert.Equal(t, cache.Key("epa-frs", base), cache.Key("epa-frs", nearby))

	far := base
	far.Latitude = 40.53
	assert.NotEqual(t, cache.Key("epa-frs", base), cache.Key("epa-frs", far))

	upper := base
	upper.State = "PA"
	assert.Equal(t, cache.Key("epa-frs", base), cache.Key("epa-frs", upper))

	assert.NotEqual(t, cache.Key("epa-frs", base), cache.Key("fema-nfhl", base),
		"different providers never share entries")
}
