// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/terravet/terravet/internal/config"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List configured providers and their tuning",
		RunE:  runProviders,
	}
}

func runProviders(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tCATEGORY\tENABLED\tTIMEOUT\tRATE/MIN\tCACHE TTL\tWEIGHT")
	for _, id := range config.ProviderIDs() {
		d, err := cfg.Descriptor(id)
		if err != nil {
			return err
		}
		rate := "unlimited"
		if d.Rate.PerMinute > 0 {
			rate = fmt.Sprintf("%d", d.Rate.PerMinute)
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\t%s\t%.2f\n",
			d.ID, d.Category, d.Enabled, d.Timeout, rate, d.CacheTTL, d.Weight)
	}
	return w.Flush()
}
