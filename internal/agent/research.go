// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ojasavaparas/Sentinel/internal/incident"
	"github.com/ojasavaparas/Sentinel/internal/llm"
)

// StageResearch is the stage name used in traces, messages, and events.
const StageResearch = "research"

// ResearchResult is the typed outcome of the deep-investigation stage.
type ResearchResult struct {
	RootCause  string   `json:"root_cause"`
	Confidence float64  `json:"confidence"`
	Timeline   []string `json:"timeline"`
	Evidence   []string `json:"evidence"`
	Summary    string   `json:"summary"`
	Defaulted  bool     `json:"-"`
}

// ResearchAgent investigates root cause using the full tool set.
type ResearchAgent struct {
	loop *Loop
}

// NewResearchAgent creates the deep-investigation stage.
func NewResearchAgent(loop *Loop) *ResearchAgent {
	return &ResearchAgent{loop: loop}
}

// Run investigates the alert guided by the triage handoff. When the
// iteration cap is hit a final no-tools call forces the model to commit to
// an answer based on evidence gathered so far.
func (a *ResearchAgent) Run(ctx context.Context, alert incident.Alert, triage *TriageResult, traceID string) (*ResearchResult, error) {
	var b strings.Builder
	b.WriteString("INCIDENT HANDOFF FROM TRIAGE:\n")
	b.WriteString("Service: " + alert.Service + "\n")
	b.WriteString("Description: " + alert.Description + "\n")
	b.WriteString("Classification: " + triage.Classification + "\n")
	b.WriteString("Priority: " + triage.Priority + "\n")
	b.WriteString("Affected services: " + strings.Join(triage.AffectedServices, ", ") + "\n")
	b.WriteString("Triage summary: " + triage.Summary + "\n\n")
	b.WriteString("Instructions: " + triage.DelegationInstructions + "\n\n")
	b.WriteString("Investigate the root cause. Correlate logs, metrics, and recent deployments, and cite the evidence behind your conclusion.")

	conversation := []llm.Message{{Role: llm.RoleUser, Content: b.String()}}

	loopResult, err := a.loop.Run(ctx, StageConfig{
		Name:             StageResearch,
		SystemPrompt:     researchSystemPrompt,
		MaxIterations:    researchMaxIterations,
		ForceFinalAnswer: true,
	}, traceID, conversation)
	if err != nil {
		return nil, err
	}

	a.loop.Tracer().LogStep(traceID, StageResearch, "research_findings",
		loopResult.Text, nil, loopResult.Usage.Total(), loopResult.CostUSD)

	result := parseResearch(loopResult.Text)

	slog.Info("research complete",
		"trace_id", traceID,
		"confidence", result.Confidence,
		"evidence_count", len(result.Evidence),
		"defaulted", result.Defaulted,
	)

	return result, nil
}

func parseResearch(text string) *ResearchResult {
	parsed, ok := ExtractJSON(text)
	if !ok {
		return &ResearchResult{
			RootCause: "undetermined",
			Summary:   text,
			Defaulted: true,
		}
	}

	result := &ResearchResult{
		RootCause: stringField(parsed, "root_cause"),
		Timeline:  stringsField(parsed, "timeline"),
		Evidence:  stringsField(parsed, "evidence"),
		Summary:   stringField(parsed, "summary"),
	}
	if confidence, ok := floatField(parsed, "confidence"); ok {
		result.Confidence = incident.ClampConfidence(confidence)
	}
	if result.RootCause == "" {
		result.RootCause = "undetermined"
	}
	return result
}
