// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ojasavaparas/Sentinel/internal/incident"
	"github.com/ojasavaparas/Sentinel/internal/llm"
)

// StageTriage is the stage name used in traces, messages, and events.
const StageTriage = "triage"

// Triage only gets the fast-assessment tools.
var triageToolNames = []string{"get_metrics", "get_service_dependencies"}

// TriageResult is the typed outcome of the triage stage. Defaulted is true
// when the model output could not be parsed and the minimal fallback was
// substituted.
type TriageResult struct {
	Classification         string   `json:"classification"`
	AffectedServices       []string `json:"affected_services"`
	Priority               string   `json:"priority"`
	Summary                string   `json:"summary"`
	DelegationInstructions string   `json:"delegation_instructions"`
	Defaulted              bool     `json:"-"`
}

// TriageAgent classifies incoming alerts and assesses blast radius.
type TriageAgent struct {
	loop *Loop
}

// NewTriageAgent creates the first-responder stage.
func NewTriageAgent(loop *Loop) *TriageAgent {
	return &TriageAgent{loop: loop}
}

// Run performs triage on the alert. Gateway errors propagate to the caller;
// malformed model output never does.
func (a *TriageAgent) Run(ctx context.Context, alert incident.Alert, traceID string) (*TriageResult, error) {
	metadata, _ := json.Marshal(alert.Metadata)

	conversation := []llm.Message{{
		Role: llm.RoleUser,
		Content: fmt.Sprintf(
			"ALERT RECEIVED:\nService: %s\nSeverity: %s\nDescription: %s\nTimestamp: %s\nMetadata: %s\n\n"+
				"Perform initial triage. Check metrics and dependencies for %s, then provide your classification and delegation instructions.",
			alert.Service, alert.Severity, alert.Description, alert.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			metadata, alert.Service,
		),
	}}

	loopResult, err := a.loop.Run(ctx, StageConfig{
		Name:          StageTriage,
		SystemPrompt:  triageSystemPrompt,
		MaxIterations: triageMaxIterations,
		ToolNames:     triageToolNames,
	}, traceID, conversation)
	if err != nil {
		return nil, err
	}

	a.loop.Tracer().LogStep(traceID, StageTriage, "triage_classification",
		loopResult.Text, nil, loopResult.Usage.Total(), loopResult.CostUSD)

	result := parseTriage(loopResult.Text, alert)

	slog.Info("triage complete",
		"trace_id", traceID,
		"classification", result.Classification,
		"priority", result.Priority,
		"affected_services", result.AffectedServices,
		"defaulted", result.Defaulted,
	)

	return result, nil
}

func parseTriage(text string, alert incident.Alert) *TriageResult {
	parsed, ok := ExtractJSON(text)
	if !ok {
		return &TriageResult{
			Classification:         "unknown",
			AffectedServices:       []string{alert.Service},
			Priority:               "P1",
			Summary:                text,
			DelegationInstructions: fmt.Sprintf("Investigate %s for %s", alert.Service, alert.Description),
			Defaulted:              true,
		}
	}

	result := &TriageResult{
		Classification:         stringField(parsed, "classification"),
		AffectedServices:       stringsField(parsed, "affected_services"),
		Priority:               stringField(parsed, "priority"),
		Summary:                stringField(parsed, "summary"),
		DelegationInstructions: stringField(parsed, "delegation_instructions"),
	}
	if result.Classification == "" {
		result.Classification = "unknown"
	}
	if len(result.AffectedServices) == 0 {
		result.AffectedServices = []string{alert.Service}
	}
	if result.DelegationInstructions == "" {
		result.DelegationInstructions = fmt.Sprintf("Investigate %s for %s", alert.Service, alert.Description)
	}
	return result
}
