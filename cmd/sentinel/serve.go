// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ojasavaparas/Sentinel/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Sentinel HTTP API",
		Long:  "Load configuration, wire the analysis pipeline, index runbooks, and serve the incident API until interrupted.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	srv, err := server.New(server.Config{ListenAddr: cfg.Server.Listen}, server.Deps{
		Orchestrator: application.orchestrator,
		Store:        application.store,
		Runbooks:     application.runbooks,
		Metrics:      application.metrics,
		Costs:        application.costs,
		Gatherer:     application.registry,
	})
	if err != nil {
		return err
	}

	slog.Info("sentinel listening", "addr", cfg.Server.Listen, "provider", cfg.LLM.Provider)
	return srv.Start(ctx)
}
