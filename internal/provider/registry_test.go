// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package provider_test

import (
	"context"
	"testing"

	"github.com/terravet/terravet/internal/provider"
	tverr "github.com/terravet/terravet/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	id       string
	category provider.Category
}

func (s stubAdapter) ID() string                  { return s.id }
func (s stubAdapter) Category() provider.Category { return s.category }
func (s stubAdapter) Fetch(context.Context, provider.Query) (*provider.Payload, error) {
	return &provider.Payload{Category: s.category}, nil
}

func floodDescriptor(id string) provider.Descriptor {
	return provider.Descriptor{ID: id, Category: provider.CategoryFlood, Weight: 0.25, Enabled: true}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := provider.NewRegistry()
	a := stubAdapter{id: "fema-nfhl", category: provider.CategoryFlood}
	require.NoError(t, r.Register(a, floodDescriptor("fema-nfhl")))

	e, err := r.Get("fema-nfhl")
	require.NoError(t, err)
	assert.Equal(t, "fema-nfhl", e.Descriptor.ID)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	r := provider.NewRegistry()
	a := stubAdapter{id: "fema-nfhl", category: provider.CategoryFlood}
	require.NoError(t, r.Register(a, floodDescriptor("fema-nfhl")))

	err := r.Register(a, floodDescriptor("fema-nfhl"))
	require.Error(t, err)
	assert.True(t, tverr.IsConflict(err))
}

func TestRegistryRejectsMismatches(t *testing.T) {
	r := provider.NewRegistry()

	err := r.Register(nil, floodDescriptor("x"))
	assert.Error(t, err, "nil adapter")

	err = r.Register(stubAdapter{id: "other", category: provider.CategoryFlood}, floodDescriptor("fema-nfhl"))
	assert.Error(t, err, "id mismatch")

	err = r.Register(stubAdapter{id: "fema-nfhl", category: provider.CategorySeismic}, floodDescriptor("fema-nfhl"))
	assert.Error(t, err, "category mismatch")
}

func TestRegistryGetUnknown(t *testing.T) {
	r := provider.NewRegistry()
	_, err := r.Get("nope")
	require.Error(t, err)
	assert.True(t, tverr.IsNotFound(err))
}

func TestRegistryListSorted(t *testing.T) {
	r := provider.NewRegistry()
	require.NoError(t, r.Register(stubAdapter{id: "zeta", category: provider.CategoryFlood}, floodDescriptor("zeta")))
	require.NoError(t, r.Register(stubAdapter{id: "alpha", category: provider.CategoryFlood}, floodDescriptor("alpha")))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Descriptor.ID)
	assert.Equal(t, "zeta", list[1].Descriptor.ID)
}
