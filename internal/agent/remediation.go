// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ojasavaparas/Sentinel/internal/incident"
	"github.com/ojasavaparas/Sentinel/internal/llm"
)

// StageRemediation is the stage name used in traces, messages, and events.
const StageRemediation = "remediation"

var remediationToolNames = []string{"search_runbooks"}

// RemediationResult is the typed outcome of the remediation-planning stage.
// RequiresApproval is nil when the model omitted the field; callers must
// treat nil as requiring approval.
type RemediationResult struct {
	Steps            []string `json:"remediation_steps"`
	RequiresApproval *bool    `json:"requires_approval"`
	RiskLevel        string   `json:"risk_level"`
	Summary          string   `json:"summary"`
	Defaulted        bool     `json:"-"`
}

// NeedsApproval reports whether a human must sign off before executing the
// plan. Omitted or degraded output always needs approval.
func (r *RemediationResult) NeedsApproval() bool {
	if r.RequiresApproval == nil {
		return true
	}
	return *r.RequiresApproval
}

// RemediationAgent turns research findings into an actionable plan backed by
// runbook search.
type RemediationAgent struct {
	loop *Loop
}

// NewRemediationAgent creates the planning stage.
func NewRemediationAgent(loop *Loop) *RemediationAgent {
	return &RemediationAgent{loop: loop}
}

// Run proposes remediation steps for the investigated incident.
func (a *RemediationAgent) Run(ctx context.Context, alert incident.Alert, research *ResearchResult, traceID string) (*RemediationResult, error) {
	var b strings.Builder
	b.WriteString("RESEARCH FINDINGS:\n")
	b.WriteString("Service: " + alert.Service + "\n")
	b.WriteString("Root cause: " + research.RootCause + "\n")
	fmt.Fprintf(&b, "Confidence: %.2f\n", research.Confidence)
	if len(research.Evidence) > 0 {
		b.WriteString("Evidence:\n")
		for _, e := range research.Evidence {
			b.WriteString("- " + e + "\n")
		}
	}
	if len(research.Timeline) > 0 {
		b.WriteString("Timeline:\n")
		for _, t := range research.Timeline {
			b.WriteString("- " + t + "\n")
		}
	}
	b.WriteString("Summary: " + research.Summary + "\n\n")
	b.WriteString("Search the runbooks for relevant procedures and propose a concrete remediation plan.")

	conversation := []llm.Message{{Role: llm.RoleUser, Content: b.String()}}

	loopResult, err := a.loop.Run(ctx, StageConfig{
		Name:          StageRemediation,
		SystemPrompt:  remediationSystemPrompt,
		MaxIterations: remediationMaxIterations,
		ToolNames:     remediationToolNames,
	}, traceID, conversation)
	if err != nil {
		return nil, err
	}

	a.loop.Tracer().LogStep(traceID, StageRemediation, "remediation_plan",
		loopResult.Text, nil, loopResult.Usage.Total(), loopResult.CostUSD)

	result := parseRemediation(loopResult.Text)

	slog.Info("remediation complete",
		"trace_id", traceID,
		"steps", len(result.Steps),
		"requires_approval", result.NeedsApproval(),
		"risk_level", result.RiskLevel,
		"defaulted", result.Defaulted,
	)

	return result, nil
}

func parseRemediation(text string) *RemediationResult {
	parsed, ok := ExtractJSON(text)
	if !ok {
		approval := true
		return &RemediationResult{
			Steps:            []string{"Manual investigation required. Automated plan generation failed."},
			RequiresApproval: &approval,
			RiskLevel:        "high",
			Summary:          text,
			Defaulted:        true,
		}
	}

	result := &RemediationResult{
		Steps:     stringsField(parsed, "remediation_steps"),
		RiskLevel: stringField(parsed, "risk_level"),
		Summary:   stringField(parsed, "summary"),
	}
	if v, present := boolField(parsed, "requires_approval"); present {
		result.RequiresApproval = &v
	}
	if len(result.Steps) == 0 {
		result.Steps = []string{"Manual investigation required. Automated plan generation failed."}
		approval := true
		result.RequiresApproval = &approval
		result.Defaulted = true
	}
	return result
}
