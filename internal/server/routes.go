// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/terravet/terravet/internal/provider"
	"github.com/terravet/terravet/internal/store"
	tverr "github.com/terravet/terravet/pkg/errors"
	"github.com/terravet/terravet/pkg/health"
	"github.com/terravet/terravet/pkg/report"
)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "create-assessment",
		Method:      http.MethodPost,
		Path:        "/api/v1/assessments",
		Summary:     "Assess hazard risk for a location",
		Tags:        []string{"assessments"},
	}, s.handleCreateAssessment)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-assessment",
		Method:      http.MethodGet,
		Path:        "/api/v1/assessments/{id}",
		Summary:     "Get a stored assessment",
		Tags:        []string{"assessments"},
	}, s.handleGetAssessment)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-assessments",
		Method:      http.MethodGet,
		Path:        "/api/v1/assessments",
		Summary:     "List stored assessments, newest first",
		Tags:        []string{"assessments"},
	}, s.handleListAssessments)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-providers",
		Method:      http.MethodGet,
		Path:        "/api/v1/providers",
		Summary:     "List providers with breaker and quota state",
		Tags:        []string{"providers"},
	}, s.handleListProviders)
}

// AssessmentRequest is the input location and parcel context.
type AssessmentRequest struct {
	Latitude         float64 `json:"latitude" minimum:"-90" maximum:"90" doc:"Parcel latitude (WGS84)"`
	Longitude        float64 `json:"longitude" minimum:"-180" maximum:"180" doc:"Parcel longitude (WGS84)"`
	RadiusMeters     float64 `json:"radiusMeters,omitempty" minimum:"0" doc:"Search radius in meters (default one mile)"`
	ConstructionYear int     `json:"constructionYear,omitempty" minimum:"0" doc:"Year the structure was built, 0 if unknown"`
	BelowGrade       bool    `json:"belowGrade,omitempty" doc:"Structure has a basement or other below-grade level"`
	PriorLandUse     string  `json:"priorLandUse,omitempty" doc:"Documented prior land use, if known"`
	County           string  `json:"county,omitempty"`
	State            string  `json:"state,omitempty"`
	CoastDistanceKm  float64 `json:"coastDistanceKm,omitempty" doc:"Distance to nearest coastline in km, negative if unknown"`
}

func (r AssessmentRequest) query() provider.Query {
	return provider.Query{
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		RadiusMeters:     r.RadiusMeters,
		ConstructionYear: r.ConstructionYear,
		BelowGrade:       r.BelowGrade,
		PriorLandUse:     provider.LandUseTag(r.PriorLandUse),
		County:           r.County,
		State:            r.State,
		CoastDistanceKm:  r.CoastDistanceKm,
	}
}

type createAssessmentInput struct {
	Body AssessmentRequest
}

type assessmentOutput struct {
	Body report.Report
}

func (s *Server) handleCreateAssessment(ctx context.Context, input *createAssessmentInput) (*assessmentOutput, error) {
	q := input.Body.query()

	results, err := s.services.Assessor.Assess(ctx, q)
	if err != nil {
		// The only orchestrator error is input validation.
		return nil, huma.NewError(tverr.HTTPStatus(err), err.Error())
	}

	rep := s.services.Scorer.Report(q, results)

	if s.services.History != nil {
		a := &store.Assessment{Query: q, Report: rep}
		if err := s.services.History.Save(ctx, a); err != nil {
			// Persistence failure does not invalidate the assessment; the
			// caller still gets the report, without an id.
			return &assessmentOutput{Body: rep}, nil
		}
		rep = a.Report
	}

	return &assessmentOutput{Body: rep}, nil
}

type getAssessmentInput struct {
	ID string `path:"id" doc:"Assessment id"`
}

func (s *Server) handleGetAssessment(ctx context.Context, input *getAssessmentInput) (*assessmentOutput, error) {
	if s.services.History == nil {
		return nil, huma.Error503ServiceUnavailable("assessment history is disabled")
	}

	a, err := s.services.History.Get(ctx, input.ID)
	if err != nil {
		if tverr.IsNotFound(err) {
			return nil, huma.Error404NotFound(fmt.Sprintf("assessment %q not found", input.ID))
		}
		return nil, huma.Error500InternalServerError("loading assessment", err)
	}
	return &assessmentOutput{Body: a.Report}, nil
}

type listAssessmentsInput struct {
	Limit  int `query:"limit" minimum:"0" maximum:"500" doc:"Page size (default 50)"`
	Offset int `query:"offset" minimum:"0"`
}

type listAssessmentsOutput struct {
	Body []report.Report
}

func (s *Server) handleListAssessments(ctx context.Context, input *listAssessmentsInput) (*listAssessmentsOutput, error) {
	if s.services.History == nil {
		return nil, huma.Error503ServiceUnavailable("assessment history is disabled")
	}

	assessments, err := s.services.History.List(ctx, store.ListOpts{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return nil, huma.Error500InternalServerError("listing assessments", err)
	}

	reports := make([]report.Report, 0, len(assessments))
	for _, a := range assessments {
		reports = append(reports, a.Report)
	}
	return &listAssessmentsOutput{Body: reports}, nil
}

type listProvidersOutput struct {
	Body []health.ProviderHealth
}

func (s *Server) handleListProviders(_ context.Context, _ *struct{}) (*listProvidersOutput, error) {
	return &listProvidersOutput{Body: s.services.Health.Providers()}, nil
}
