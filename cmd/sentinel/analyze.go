// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/ojasavaparas/Sentinel/internal/incident"
	sentinelerr "github.com/ojasavaparas/Sentinel/pkg/errors"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a single alert from the command line",
		Long:  "Run the full triage, research, and remediation pipeline for one alert and print the incident report as JSON.",
		RunE:  runAnalyze,
	}

	cmd.Flags().String("service", "", "affected service name (required)")
	cmd.Flags().String("description", "", "what the alert observed (required)")
	cmd.Flags().String("severity", "high", "alert severity (critical, high, medium, low)")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	service, _ := cmd.Flags().GetString("service")
	description, _ := cmd.Flags().GetString("description")
	rawSeverity, _ := cmd.Flags().GetString("severity")

	severity, err := incident.ParseSeverity(rawSeverity)
	if err != nil {
		return sentinelerr.Wrap(err, sentinelerr.CodeCLIInputInvalid, "parsing severity")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	application, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	report := application.orchestrator.Analyze(ctx, incident.Alert{
		Service:     service,
		Description: description,
		Severity:    severity,
		Timestamp:   time.Now().UTC(),
	})

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
