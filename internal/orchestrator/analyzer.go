// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

// Package orchestrator runs the triage, research, and remediation agents in
// sequence and assembles the final incident report. Analysis never returns
// an error to the caller; failures degrade into a report that says what
// happened and where.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ojasavaparas/Sentinel/internal/agent"
	"github.com/ojasavaparas/Sentinel/internal/incident"
	"github.com/ojasavaparas/Sentinel/internal/llm"
	"github.com/ojasavaparas/Sentinel/internal/tools"
	"github.com/ojasavaparas/Sentinel/internal/trace"
)

// DefaultTimeout bounds a full three-stage analysis.
const DefaultTimeout = 120 * time.Second

// Orchestrator coordinates the agent pipeline. All dependencies are
// injected; the zero value is not usable.
type Orchestrator struct {
	client   llm.Client
	registry *tools.Registry
	tracer   *trace.Tracer
	messages *trace.MessageLog
	pricing  llm.Pricing
	timeout  time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout overrides the per-analysis deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithPricing overrides the token pricing used for cost accounting.
func WithPricing(p llm.Pricing) Option {
	return func(o *Orchestrator) { o.pricing = p }
}

// New builds an orchestrator over the given gateway and tool registry.
func New(client llm.Client, registry *tools.Registry, tracer *trace.Tracer, messages *trace.MessageLog, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:   client,
		registry: registry,
		tracer:   tracer,
		messages: messages,
		pricing:  llm.DefaultPricing,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Tracer exposes the decision tracer for trace lookups by incident id.
func (o *Orchestrator) Tracer() *trace.Tracer { return o.tracer }

// Messages exposes the inter-agent message log.
func (o *Orchestrator) Messages() *trace.MessageLog { return o.messages }

// Analyze runs the full pipeline for an alert and always returns a report.
// The incident id doubles as the trace id.
func (o *Orchestrator) Analyze(ctx context.Context, alert incident.Alert) *incident.IncidentReport {
	traceID := uuid.NewString()
	return o.analyze(ctx, alert, traceID, o.tracer, nil)
}

func (o *Orchestrator) analyze(ctx context.Context, alert incident.Alert, traceID string, tracer *trace.Tracer, emit func(incident.StreamEvent)) *incident.IncidentReport {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	tracer.Start(traceID)

	slog.Info("analysis started",
		"trace_id", traceID,
		"service", alert.Service,
		"severity", alert.Severity,
	)

	loop := agent.NewLoop(o.client, o.registry, tracer, agent.WithPricing(o.pricing))

	send(emit, incident.StreamEvent{Type: incident.EventAgentStart, AgentName: agent.StageTriage})
	triage, err := agent.NewTriageAgent(loop).Run(ctx, alert, traceID)
	if err != nil {
		return o.degraded(tracer, traceID, agent.StageTriage, alert, start, err, nil, nil, emit)
	}
	send(emit, incident.StreamEvent{Type: incident.EventAgentComplete, AgentName: agent.StageTriage, Data: map[string]any{
		"classification": triage.Classification,
		"priority":       triage.Priority,
	}})

	o.messages.Send(agent.StageTriage, agent.StageResearch, incident.MessageDelegate, map[string]any{
		"instructions":      triage.DelegationInstructions,
		"classification":    triage.Classification,
		"priority":          triage.Priority,
		"affected_services": triage.AffectedServices,
	}, traceID)

	send(emit, incident.StreamEvent{Type: incident.EventAgentStart, AgentName: agent.StageResearch})
	research, err := agent.NewResearchAgent(loop).Run(ctx, alert, triage, traceID)
	if err != nil {
		return o.degraded(tracer, traceID, agent.StageResearch, alert, start, err, triage, nil, emit)
	}
	send(emit, incident.StreamEvent{Type: incident.EventAgentComplete, AgentName: agent.StageResearch, Data: map[string]any{
		"root_cause": research.RootCause,
		"confidence": research.Confidence,
	}})

	o.messages.Send(agent.StageResearch, agent.StageRemediation, incident.MessageDelegate, map[string]any{
		"root_cause": research.RootCause,
		"confidence": research.Confidence,
		"evidence":   research.Evidence,
	}, traceID)

	send(emit, incident.StreamEvent{Type: incident.EventAgentStart, AgentName: agent.StageRemediation})
	remediation, err := agent.NewRemediationAgent(loop).Run(ctx, alert, research, traceID)
	if err != nil {
		return o.degraded(tracer, traceID, agent.StageRemediation, alert, start, err, triage, research, emit)
	}
	send(emit, incident.StreamEvent{Type: incident.EventAgentComplete, AgentName: agent.StageRemediation, Data: map[string]any{
		"steps":             len(remediation.Steps),
		"requires_approval": remediation.NeedsApproval(),
	}})

	terminal := incident.MessageRespond
	note := "remediation plan is safe for automated execution"
	if remediation.NeedsApproval() {
		terminal = incident.MessageEscalate
		note = "remediation plan requires human approval before execution"
	}
	o.messages.Send(agent.StageRemediation, "orchestrator", terminal, map[string]any{
		"note":       note,
		"steps":      remediation.Steps,
		"risk_level": remediation.RiskLevel,
	}, traceID)

	report := &incident.IncidentReport{
		IncidentID:            traceID,
		Alert:                 alert,
		Summary:               remediation.Summary,
		RootCause:             research.RootCause,
		ConfidenceScore:       incident.ClampConfidence(research.Confidence),
		RemediationSteps:      remediation.Steps,
		AgentTrace:            tracer.Get(traceID),
		TotalTokens:           tracer.TotalTokens(traceID),
		TotalCostUSD:          tracer.TotalCost(traceID),
		DurationSeconds:       time.Since(start).Seconds(),
		RequiresHumanApproval: remediation.NeedsApproval(),
	}
	if report.Summary == "" {
		report.Summary = research.Summary
	}

	slog.Info("analysis complete",
		"trace_id", traceID,
		"root_cause", report.RootCause,
		"confidence", report.ConfidenceScore,
		"total_tokens", report.TotalTokens,
		"total_cost_usd", report.TotalCostUSD,
		"duration_seconds", report.DurationSeconds,
	)

	return report
}

// degraded converts a stage failure into a partial report. Deadline
// overruns are recorded as a single timeout step, everything else as an
// error step. Results from stages that already completed are kept: a
// remediation failure still reports research's root cause and confidence.
func (o *Orchestrator) degraded(tracer *trace.Tracer, traceID, stage string, alert incident.Alert, start time.Time, err error, triage *agent.TriageResult, research *agent.ResearchResult, emit func(incident.StreamEvent)) *incident.IncidentReport {
	action := "error"
	reason := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		action = "timeout"
		reason = fmt.Sprintf("analysis exceeded the %s deadline", o.timeout)
	}

	tracer.LogStep(traceID, stage, action, reason, nil, 0, 0)
	send(emit, incident.StreamEvent{Type: incident.EventError, AgentName: stage, Data: map[string]any{
		"error": reason,
	}})

	slog.Error("analysis degraded",
		"trace_id", traceID,
		"stage", stage,
		"action", action,
		"error", err,
	)

	rootCause := "analysis incomplete"
	confidence := 0.0
	summary := fmt.Sprintf("Analysis aborted during %s: %s", stage, reason)
	switch {
	case research != nil:
		rootCause = research.RootCause
		confidence = incident.ClampConfidence(research.Confidence)
		if research.Summary != "" {
			summary = fmt.Sprintf("%s. %s", research.Summary, summary)
		}
	case triage != nil && triage.Summary != "":
		summary = fmt.Sprintf("%s. %s", triage.Summary, summary)
	}

	return &incident.IncidentReport{
		IncidentID:            traceID,
		Alert:                 alert,
		Summary:               summary,
		RootCause:             rootCause,
		ConfidenceScore:       confidence,
		RemediationSteps:      []string{"Manual investigation required."},
		AgentTrace:            tracer.Get(traceID),
		TotalTokens:           tracer.TotalTokens(traceID),
		TotalCostUSD:          tracer.TotalCost(traceID),
		DurationSeconds:       time.Since(start).Seconds(),
		RequiresHumanApproval: true,
	}
}

func send(emit func(incident.StreamEvent), ev incident.StreamEvent) {
	if emit != nil {
		emit(ev)
	}
}
