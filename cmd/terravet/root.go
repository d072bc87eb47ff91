// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/terravet/terravet/internal/config"
)

// NewRootCmd creates the root terravet command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "terravet",
		Short:         "Terravet property hazard risk engine",
		Long:          "Terravet queries public hazard data sources for a location and reduces them to a composite risk score with a recommendation and confidence.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newServeCmd(),
		newAssessCmd(),
		newProvidersCmd(),
		newVersionCmd(),
	)

	return root
}

// resolveConfig loads configuration using the --config flag when set,
// falling back to the default path when it exists, and built-in defaults
// otherwise. On first run a commented default config is written to the
// default path.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if defaultPath, err := config.DefaultConfigPath(); err == nil {
			if _, statErr := os.Stat(defaultPath); statErr == nil {
				path = defaultPath
			} else if written := config.BootstrapConfig(); written != "" {
				path = written
			}
		}
	}
	config.WarnInsecurePermissions(path)
	return config.Load(path)
}
