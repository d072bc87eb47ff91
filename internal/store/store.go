// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package store defines the persistence contract for completed
// assessments. The engine works without a store; persistence is a
// collaborator for callers that want history and audit.
package store

import (
	"context"

	"github.com/terravet/terravet/internal/provider"
	"github.com/terravet/terravet/pkg/report"
)

// Assessment is one persisted assessment: the input location and the
// report it produced.
type Assessment struct {
	ID     string
	Query  provider.Query
	Report report.Report
}

// ListOpts pages assessment listings, newest first.
type ListOpts struct {
	Limit  int
	Offset int
}

// AssessmentStore persists and retrieves assessment history.
type AssessmentStore interface {
	Save(ctx context.Context, a *Assessment) error
	Get(ctx context.Context, id string) (*Assessment, error)
	List(ctx context.Context, opts ListOpts) ([]*Assessment, error)
	Close() error
}
