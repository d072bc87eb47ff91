// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/terravet/terravet/internal/provider"
	"github.com/terravet/terravet/internal/store"
)

func newAssessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run a one-shot assessment for a location",
		Long:  "Query every applicable provider for the given coordinates and print the risk report as JSON.",
		RunE:  runAssess,
	}

	cmd.Flags().Float64("lat", 0, "parcel latitude (required)")
	cmd.Flags().Float64("lng", 0, "parcel longitude (required)")
	cmd.Flags().Float64("radius", 0, "search radius in meters (default one mile)")
	cmd.Flags().Int("year", 0, "construction year, 0 if unknown")
	cmd.Flags().Bool("below-grade", false, "structure has a basement or other below-grade level")
	cmd.Flags().String("land-use", "", "documented prior land use")
	cmd.Flags().String("county", "", "county name")
	cmd.Flags().String("state", "", "two-letter state code")
	cmd.Flags().Float64("coast-km", -1, "distance to nearest coastline in km, negative if unknown")
	cmd.Flags().Bool("no-save", false, "do not record the assessment in history")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")

	return cmd
}

func runAssess(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	engine, err := WireEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	lat, _ := cmd.Flags().GetFloat64("lat")
	lng, _ := cmd.Flags().GetFloat64("lng")
	radius, _ := cmd.Flags().GetFloat64("radius")
	year, _ := cmd.Flags().GetInt("year")
	belowGrade, _ := cmd.Flags().GetBool("below-grade")
	landUse, _ := cmd.Flags().GetString("land-use")
	county, _ := cmd.Flags().GetString("county")
	state, _ := cmd.Flags().GetString("state")
	coastKm, _ := cmd.Flags().GetFloat64("coast-km")
	noSave, _ := cmd.Flags().GetBool("no-save")

	q := provider.Query{
		Latitude:         lat,
		Longitude:        lng,
		RadiusMeters:     radius,
		ConstructionYear: year,
		BelowGrade:       belowGrade,
		PriorLandUse:     provider.LandUseTag(landUse),
		County:           county,
		State:            state,
		CoastDistanceKm:  coastKm,
	}

	results, err := engine.Orchestrator.Assess(cmd.Context(), q)
	if err != nil {
		return err
	}
	rep := engine.Scorer.Report(q, results)

	if engine.History != nil && !noSave {
		a := &store.Assessment{Query: q, Report: rep}
		if err := engine.History.Save(cmd.Context(), a); err == nil {
			rep = a.Report
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
