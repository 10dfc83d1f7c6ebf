// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ojasavaparas/Sentinel/internal/config"
)

// NewRootCmd creates the root sentinel command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sentinel",
		Short:         "Sentinel is an AI-assisted production incident analysis service",
		Long:          "Sentinel runs a pipeline of LLM agents that triage alerts, investigate root cause, and propose remediation plans.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newServeCmd(),
		newAnalyzeCmd(),
		newIngestCmd(),
		newVersionCmd(),
	)

	return root
}

// loadConfig reads the config file named by the --config flag, falling back
// to defaults and SENTINEL_ environment variables when absent.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
