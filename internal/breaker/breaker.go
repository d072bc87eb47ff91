// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package breaker implements the per-provider circuit breaker protecting
// upstream hazard services. Breaker state lives for the process lifetime,
// keyed by provider id, created lazily on first use. The breaker is the
// only fatal/non-fatal gate for a provider call: it never returns an error
// to the orchestrator, only a permit decision.
package breaker

import (
	"sync"
	"time"

	"github.com/terravet/terravet/pkg/health"
)

// State is the circuit state for one provider.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// Options configures breaker behavior. The zero value picks the defaults.
type Options struct {
	// Threshold is the consecutive failure count that opens the circuit.
	Threshold int
	// Cooldown is the initial open period before a trial call is allowed.
	Cooldown time.Duration
	// MaxCooldown caps the exponential backoff applied on repeated trial
	// failures.
	MaxCooldown time.Duration
	// FailureWindow is the rolling window within which failures accumulate;
	// a failure older than this resets the count before the next one lands.
	FailureWindow time.Duration
}

// Defaults applied when an option is zero.
const (
	DefaultThreshold     = 5
	DefaultCooldown      = 30 * time.Second
	DefaultMaxCooldown   = 5 * time.Minute
	DefaultFailureWindow = 2 * time.Minute
)

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Cooldown <= 0 {
		o.Cooldown = DefaultCooldown
	}
	if o.MaxCooldown <= 0 {
		o.MaxCooldown = DefaultMaxCooldown
	}
	if o.FailureWindow <= 0 {
		o.FailureWindow = DefaultFailureWindow
	}
	return o
}

type circuit struct {
	mu sync.Mutex

	state         State
	failures      int
	successes     int // consecutive successes, meaningful only in HalfOpen
	lastFailureAt time.Time
	nextRetryAt   time.Time
	lastError     string
	cooldown      time.Duration
	trialInFlight bool
}

// Breaker tracks one circuit per provider id.
type Breaker struct {
	mu       sync.Mutex
	opts     Options
	circuits map[string]*circuit
	nowFunc  func() time.Time
}

// New creates a breaker group with shared options.
func New(opts Options) *Breaker {
	return &Breaker{
		opts:     opts.withDefaults(),
		circuits: make(map[string]*circuit),
		nowFunc:  time.Now,
	}
}

// SetNowFunc overrides the time source (for testing).
func (b *Breaker) SetNowFunc(fn func() time.Time) {
	b.mu.Lock()
	b.nowFunc = fn
	b.mu.Unlock()
}

func (b *Breaker) get(id string) (*circuit, time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[id]
	if !ok {
		c = &circuit{state: StateClosed, cooldown: b.opts.Cooldown}
		b.circuits[id] = c
	}
	return c, b.nowFunc()
}

// Allow reports whether a call to the provider may proceed. In HalfOpen
// exactly one trial call is admitted; concurrent callers are rejected
// until the trial resolves via RecordSuccess or RecordFailure.
func (b *Breaker) Allow(id string) bool {
	c, now := b.get(id)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		return true
	case StateOpen:
		if now.Before(c.nextRetryAt) {
			return false
		}
		c.state = StateHalfOpen
		c.trialInFlight = true
		return true
	case StateHalfOpen:
		if c.trialInFlight {
			return false
		}
		c.trialInFlight = true
		return true
	}
	return false
}

// RecordSuccess notes a successful call. In Closed it resets the failure
// count; in HalfOpen it closes the circuit and resets the backoff.
func (b *Breaker) RecordSuccess(id string) {
	c, _ := b.get(id)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		c.failures = 0
	case StateHalfOpen:
		c.successes++
		c.state = StateClosed
		c.failures = 0
		c.successes = 0
		c.trialInFlight = false
		c.cooldown = b.opts.Cooldown
		c.lastError = ""
	}
}

// CancelTrial releases a HalfOpen trial slot without resolving it, for
// callers that were admitted but never reached the network (e.g. the rate
// limiter rejected the call). A no-op in any other state.
func (b *Breaker) CancelTrial(id string) {
	c, _ := b.get(id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateHalfOpen {
		c.trialInFlight = false
	}
}

// RecordFailure notes a failed call. In Closed it counts toward the
// threshold within the rolling failure window; in HalfOpen it reopens the
// circuit with a doubled, capped cooldown.
func (b *Breaker) RecordFailure(id string, err error) {
	c, now := b.get(id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.lastError = err.Error()
	}

	switch c.state {
	case StateClosed:
		if !c.lastFailureAt.IsZero() && now.Sub(c.lastFailureAt) > b.opts.FailureWindow {
			c.failures = 0
		}
		c.failures++
		c.lastFailureAt = now
		if c.failures >= b.opts.Threshold {
			c.state = StateOpen
			c.nextRetryAt = now.Add(c.cooldown)
		}
	case StateHalfOpen:
		c.lastFailureAt = now
		c.trialInFlight = false
		c.cooldown *= 2
		if c.cooldown > b.opts.MaxCooldown {
			c.cooldown = b.opts.MaxCooldown
		}
		c.state = StateOpen
		c.nextRetryAt = now.Add(c.cooldown)
	case StateOpen:
		c.lastFailureAt = now
	}
}

// Snapshot returns the current circuit state for a provider, or nil if the
// provider has not been seen yet.
func (b *Breaker) Snapshot(id string) *health.BreakerMetrics {
	b.mu.Lock()
	c, ok := b.circuits[id]
	now := b.nowFunc()
	b.mu.Unlock()
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m := &health.BreakerMetrics{
		State:               string(c.state),
		ConsecutiveFailures: c.failures,
		LastError:           c.lastError,
		Available:           c.state != StateOpen || !now.Before(c.nextRetryAt),
	}
	if !c.lastFailureAt.IsZero() {
		t := c.lastFailureAt
		m.LastFailureAt = &t
	}
	if c.state == StateOpen {
		t := c.nextRetryAt
		m.NextRetryAt = &t
	}
	return m
}
