// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package provider

import (
	"sort"
	"sync"

	tverr "github.com/terravet/terravet/pkg/errors"
)

// Entry pairs an adapter with its static descriptor.
type Entry struct {
	Adapter    Adapter
	Descriptor Descriptor
}

// Registry holds the configured adapters keyed by provider id. Registration
// happens during startup wiring; lookups are concurrent afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds an adapter with its descriptor. The descriptor is validated
// and defaulted; the adapter id must match the descriptor and be unique.
func (r *Registry) Register(a Adapter, d Descriptor) error {
	if a == nil {
		return tverr.New(tverr.CodeConfigValidateInvalidValue, "adapter must not be nil")
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if a.ID() != d.ID {
		return tverr.Errorf(tverr.CodeConfigValidateInvalidValue,
			"adapter id %q does not match descriptor id %q", a.ID(), d.ID)
	}
	if a.Category() != d.Category {
		return tverr.Errorf(tverr.CodeConfigValidateInvalidValue,
			"adapter %s category %q does not match descriptor category %q", d.ID, a.Category(), d.Category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[d.ID]; exists {
		return tverr.Errorf(tverr.CodeProviderDuplicate, "provider %q already registered", d.ID)
	}
	r.entries[d.ID] = Entry{Adapter: a, Descriptor: d}
	return nil
}

// Get returns the entry for a provider id.
func (r *Registry) Get(id string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, tverr.Errorf(tverr.CodeProviderNotFound, "provider %q not registered", id)
	}
	return e, nil
}

// List returns all entries sorted by provider id for deterministic
// iteration in the orchestrator and operator surfaces.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Descriptor.ID < out[j].Descriptor.ID
	})
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
