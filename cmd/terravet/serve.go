// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/terravet/terravet/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the assessment HTTP server",
		Long:  "Load configuration, wire the provider pipeline, and serve the assessment API until interrupted.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}

	engine, err := WireEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	srv, err := server.New(server.Config{
		ListenAddr: cfg.Server.Listen,
		RateLimit: server.RateLimitConfig{
			RequestsPerSecond: float64(cfg.Server.RequestsPerMinute) / 60,
			Burst:             cfg.Server.RequestsPerMinute,
		},
	})
	if err != nil {
		return err
	}
	srv.RegisterServices(&server.Services{
		Assessor: engine.Orchestrator,
		Scorer:   engine.Scorer,
		History:  engine.History,
		Health:   server.NewHealthSource(engine.Registry, engine.Limiter, engine.Breaker),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting terravet", "listen", cfg.Server.Listen, "providers", engine.Registry.Len())
	return srv.Start(ctx)
}
