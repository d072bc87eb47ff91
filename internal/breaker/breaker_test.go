// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/terravet/terravet/internal/breaker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

func newBreaker(now *time.Time) *breaker.Breaker {
	b := breaker.New(breaker.Options{
		Threshold:     3,
		Cooldown:      30 * time.Second,
		MaxCooldown:   2 * time.Minute,
		FailureWindow: time.Minute,
	})
	b.SetNowFunc(func() time.Time { return *now })
	return b
}

func tripBreaker(b *breaker.Breaker, id string) {
	for i := 0; i < 3; i++ {
		b.RecordFailure(id, errUpstream)
	}
}

func TestStartsClosed(t *testing.T) {
	now := time.Now()
	b := newBreaker(&now)
	assert.True(t, b.Allow("p"))
}

func TestOpensAtThreshold(t *testing.T) {
	now := time.Now()
	b := newBreaker(&now)

	b.RecordFailure("p", errUpstream)
	b.RecordFailure("p", errUpstream)
	assert.True(t, b.Allow("p"), "below threshold stays closed")

	b.RecordFailure("p", errUpstream)
	assert.False(t, b.Allow("p"), "threshold reached opens the circuit")

	snap := b.Snapshot("p")
	require.NotNil(t, snap)
	assert.Equal(t, string(breaker.StateOpen), snap.State)
	assert.Equal(t, "upstream down", snap.LastError)
	require.NotNil(t, snap.NextRetryAt)
	assert.Equal(t, now.Add(30*time.Second), *snap.NextRetryAt)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	now := time.Now()
	b := newBreaker(&now)

	b.RecordFailure("p", errUpstream)
	b.RecordFailure("p", errUpstream)
	b.RecordSuccess("p")
	b.RecordFailure("p", errUpstream)
	b.RecordFailure("p", errUpstream)

	assert.True(t, b.Allow("p"), "success between failures forgives the streak")
}

func TestFailureWindowForgivesStaleFailures(t *testing.T) {
	now := time.Now()
	b := newBreaker(&now)

	b.RecordFailure("p", errUpstream)
	b.RecordFailure("p", errUpstream)

	// Two minutes of quiet, then two more failures: count restarts at 1.
	now = now.Add(2 * time.Minute)
	b.RecordFailure("p", errUpstream)
	b.RecordFailure("p", errUpstream)
	assert.True(t, b.Allow("p"))
}

func TestHalfOpenSingleTrial(t *testing.T) {
	now := time.Now()
	b := newBreaker(&now)
	tripBreaker(b, "p")
	require.False(t, b.Allow("p"))

	now = now.Add(31 * time.Second)
	assert.True(t, b.Allow("p"), "cooldown elapsed admits one trial")
	assert.False(t, b.Allow("p"), "second caller during trial is rejected")
}

func TestHalfOpenSuccessCloses(t *testing.T) {
	now := time.Now()
	b := newBreaker(&now)
	tripBreaker(b, "p")

	now = now.Add(31 * time.Second)
	require.True(t, b.Allow("p"))
	b.RecordSuccess("p")

	snap := b.Snapshot("p")
	assert.Equal(t, string(breaker.StateClosed), snap.State)
	assert.Equal(t, 0, snap.ConsecutiveFailures)
	assert.True(t, b.Allow("p"))

	// Backoff is reset: a fresh trip waits the base cooldown again.
	tripBreaker(b, "p")
	snap = b.Snapshot("p")
	require.NotNil(t, snap.NextRetryAt)
	assert.Equal(t, now.Add(30*time.Second), *snap.NextRetryAt)
}

func TestHalfOpenFailureDoublesCooldown(t *testing.T) {
	now := time.Now()
	b := newBreaker(&now)
	tripBreaker(b, "p")

	now = now.Add(31 * time.Second)
	require.True(t, b.Allow("p"))
	b.RecordFailure("p", errUpstream)

	snap := b.Snapshot("p")
	assert.Equal(t, string(breaker.StateOpen), snap.State)
	require.NotNil(t, snap.NextRetryAt)
	assert.Equal(t, now.Add(time.Minute), *snap.NextRetryAt, "cooldown doubled to 60s")

	// Second failed trial doubles again but hits the 2m cap.
	now = now.Add(61 * time.Second)
	require.True(t, b.Allow("p"))
	b.RecordFailure("p", errUpstream)
	snap = b.Snapshot("p")
	assert.Equal(t, now.Add(2*time.Minute), *snap.NextRetryAt, "capped at MaxCooldown")
}

func TestProvidersIndependent(t *testing.T) {
	now := time.Now()
	b := newBreaker(&now)
	tripBreaker(b, "a")

	assert.False(t, b.Allow("a"))
	assert.True(t, b.Allow("b"))
}

func TestSnapshotUnseenProvider(t *testing.T) {
	now := time.Now()
	b := newBreaker(&now)
	assert.Nil(t, b.Snapshot("nope"))
}

func TestCancelTrialReleasesHalfOpenSlot(t *testing.T) {
	now := time.Now()
	b := newBreaker(&now)
	tripBreaker(b, "p")

	now = now.Add(31 * time.Second)
	require.True(t, b.Allow("p"), "cooldown elapsed admits a trial")
	assert.False(t, b.Allow("p"), "trial slot taken")

	// The admitted caller never reached the network; releasing the slot
	// lets the next caller run the trial instead.
	b.CancelTrial("p")
	assert.True(t, b.Allow("p"))
}
