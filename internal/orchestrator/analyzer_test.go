// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ojasavaparas/Sentinel/internal/incident"
	"github.com/ojasavaparas/Sentinel/internal/llm"
	"github.com/ojasavaparas/Sentinel/internal/orchestrator"
	"github.com/ojasavaparas/Sentinel/internal/simulation"
	"github.com/ojasavaparas/Sentinel/internal/tools"
	"github.com/ojasavaparas/Sentinel/internal/trace"
	sentinelerr "github.com/ojasavaparas/Sentinel/pkg/errors"
)

var testAlert = incident.Alert{
	Service:     "payment-api",
	Description: "p99 latency above 2s",
	Severity:    incident.SeverityCritical,
	Timestamp:   time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
}

const (
	triageJSON = `{"classification": "resource-exhaustion", "affected_services": ["payment-api"], ` +
		`"priority": "P0", "summary": "connection pool exhausted", ` +
		`"delegation_instructions": "correlate deployments with pool metrics"}`
	researchJSON = `{"root_cause": "deployment a3f8c21 reduced the pool from 50 to 20", ` +
		`"confidence": 0.92, "timeline": ["10:00 deploy", "10:15 latency climbs"], ` +
		`"evidence": ["pool usage at 100%"], "summary": "config regression"}`
	remediationJSON = `{"remediation_steps": ["Roll back deployment a3f8c21", ` +
		`"Verify pool usage drops below 80%", "Monitor p99 latency for 15 minutes"], ` +
		`"requires_approval": true, "risk_level": "medium", "summary": "rollback the pool change"}`
)

func newTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	dataset, err := simulation.Load()
	require.NoError(t, err)
	registry := tools.NewRegistry()
	registry.RegisterSimulated(dataset)
	return registry
}

func textResponse(text string) *llm.Response {
	return &llm.Response{
		Text:       text,
		Usage:      llm.Usage{InputTokens: 200, OutputTokens: 100},
		StopReason: "end_turn",
	}
}

func newTestOrchestrator(t *testing.T, client llm.Client, opts ...orchestrator.Option) *orchestrator.Orchestrator {
	t.Helper()
	return orchestrator.New(client, newTestRegistry(t), trace.NewTracer(nil), trace.NewMessageLog(), opts...)
}

func TestAnalyzeFullPipeline(t *testing.T) {
	client := llm.NewScriptedClient(
		textResponse(triageJSON),
		textResponse(researchJSON),
		textResponse(remediationJSON),
	)
	orch := newTestOrchestrator(t, client)

	report := orch.Analyze(context.Background(), testAlert)
	require.NotNil(t, report)

	assert.NotEmpty(t, report.IncidentID)
	assert.Equal(t, testAlert, report.Alert)
	assert.Equal(t, "deployment a3f8c21 reduced the pool from 50 to 20", report.RootCause)
	assert.Equal(t, 0.92, report.ConfidenceScore)
	assert.True(t, report.RequiresHumanApproval)
	require.Len(t, report.RemediationSteps, 3)
	assert.Equal(t, "Roll back deployment a3f8c21", report.RemediationSteps[0])

	// No tools were requested, so the trace is exactly one terminal step
	// per stage, in pipeline order.
	require.Len(t, report.AgentTrace, 3)
	assert.Equal(t, "triage", report.AgentTrace[0].AgentName)
	assert.Equal(t, "research", report.AgentTrace[1].AgentName)
	assert.Equal(t, "remediation", report.AgentTrace[2].AgentName)

	assert.Equal(t, 900, report.TotalTokens)
	assert.Greater(t, report.DurationSeconds, 0.0)
}

func TestAnalyzeTotalsMatchTrace(t *testing.T) {
	client := llm.NewScriptedClient(
		&llm.Response{
			Text:       "checking metrics",
			ToolCalls:  []llm.ToolUse{{ID: "tu_1", Name: "get_metrics", Input: map[string]any{"service": "payment-api"}}},
			Usage:      llm.Usage{InputTokens: 150, OutputTokens: 40},
			StopReason: "tool_use",
		},
		textResponse(triageJSON),
		textResponse(researchJSON),
		textResponse(remediationJSON),
	)
	orch := newTestOrchestrator(t, client)

	report := orch.Analyze(context.Background(), testAlert)

	var tokens int
	var cost float64
	for _, step := range report.AgentTrace {
		tokens += step.TokensUsed
		cost += step.CostUSD
	}
	assert.Equal(t, tokens, report.TotalTokens)
	assert.InDelta(t, cost, report.TotalCostUSD, 1e-12)

	// The tool execution shows up as its own step before the triage summary.
	assert.Equal(t, "tool_call:get_metrics", report.AgentTrace[0].Action)
	assert.Zero(t, report.AgentTrace[0].TokensUsed)
}

func TestAnalyzeSendsInterAgentMessages(t *testing.T) {
	client := llm.NewScriptedClient(
		textResponse(triageJSON),
		textResponse(researchJSON),
		textResponse(remediationJSON),
	)
	orch := newTestOrchestrator(t, client)

	report := orch.Analyze(context.Background(), testAlert)

	messages := orch.Messages().MessagesFor(report.IncidentID)
	require.Len(t, messages, 3)

	assert.Equal(t, incident.MessageDelegate, messages[0].Kind)
	assert.Equal(t, "triage", messages[0].FromAgent)
	assert.Equal(t, "research", messages[0].ToAgent)
	assert.Equal(t, "correlate deployments with pool metrics", messages[0].Content["instructions"])

	assert.Equal(t, incident.MessageDelegate, messages[1].Kind)
	assert.Equal(t, "remediation", messages[1].ToAgent)

	// The plan demands approval, so the final message escalates.
	assert.Equal(t, incident.MessageEscalate, messages[2].Kind)
	assert.Equal(t, "orchestrator", messages[2].ToAgent)
}

func TestAnalyzeRespondsWhenNoApprovalNeeded(t *testing.T) {
	safePlan := `{"remediation_steps": ["clear the stale cache"], "requires_approval": false, "risk_level": "low", "summary": "safe"}`
	client := llm.NewScriptedClient(
		textResponse(triageJSON),
		textResponse(researchJSON),
		textResponse(safePlan),
	)
	orch := newTestOrchestrator(t, client)

	report := orch.Analyze(context.Background(), testAlert)

	assert.False(t, report.RequiresHumanApproval)
	messages := orch.Messages().MessagesFor(report.IncidentID)
	require.Len(t, messages, 3)
	assert.Equal(t, incident.MessageRespond, messages[2].Kind)
}

type erroringClient struct{}

func (erroringClient) Chat(context.Context, llm.Request) (*llm.Response, error) {
	return nil, sentinelerr.New(sentinelerr.CodeLLMUpstreamFailure, "gateway unreachable")
}

func TestAnalyzeNeverReturnsErrorOnGatewayFailure(t *testing.T) {
	orch := newTestOrchestrator(t, erroringClient{})

	report := orch.Analyze(context.Background(), testAlert)
	require.NotNil(t, report)

	assert.Equal(t, "analysis incomplete", report.RootCause)
	assert.Zero(t, report.ConfidenceScore)
	assert.True(t, report.RequiresHumanApproval)
	assert.Contains(t, report.Summary, "triage")

	require.Len(t, report.AgentTrace, 1)
	assert.Equal(t, "error", report.AgentTrace[0].Action)
	assert.Equal(t, "triage", report.AgentTrace[0].AgentName)
}

func TestAnalyzeMidPipelineFailureKeepsEarlierSteps(t *testing.T) {
	// Triage succeeds, then the gateway dies.
	client := llm.NewScriptedClient(textResponse(triageJSON))
	orch := newTestOrchestrator(t, &failAfterScript{inner: client, failAfter: 1})

	report := orch.Analyze(context.Background(), testAlert)

	require.Len(t, report.AgentTrace, 2)
	assert.Equal(t, "triage_classification", report.AgentTrace[0].Action)
	assert.Equal(t, "error", report.AgentTrace[1].Action)
	assert.Equal(t, "research", report.AgentTrace[1].AgentName)
	assert.Equal(t, 300, report.TotalTokens)
}

func TestAnalyzeLateFailureKeepsCompletedStageResults(t *testing.T) {
	// Triage and research succeed, then the gateway dies during remediation.
	// The degraded report must keep research's conclusions instead of
	// discarding them.
	client := llm.NewScriptedClient(textResponse(triageJSON), textResponse(researchJSON))
	orch := newTestOrchestrator(t, &failAfterScript{inner: client, failAfter: 2})

	report := orch.Analyze(context.Background(), testAlert)
	require.NotNil(t, report)

	assert.Equal(t, "deployment a3f8c21 reduced the pool from 50 to 20", report.RootCause)
	assert.Equal(t, 0.92, report.ConfidenceScore)
	assert.Contains(t, report.Summary, "config regression")
	assert.Contains(t, report.Summary, "remediation")
	assert.True(t, report.RequiresHumanApproval)
	assert.Equal(t, []string{"Manual investigation required."}, report.RemediationSteps)

	require.Len(t, report.AgentTrace, 3)
	assert.Equal(t, "triage_classification", report.AgentTrace[0].Action)
	assert.Equal(t, "research_findings", report.AgentTrace[1].Action)
	assert.Equal(t, "error", report.AgentTrace[2].Action)
	assert.Equal(t, "remediation", report.AgentTrace[2].AgentName)
}

func TestAnalyzeResearchFailureKeepsTriageSummary(t *testing.T) {
	client := llm.NewScriptedClient(textResponse(triageJSON))
	orch := newTestOrchestrator(t, &failAfterScript{inner: client, failAfter: 1})

	report := orch.Analyze(context.Background(), testAlert)

	assert.Equal(t, "analysis incomplete", report.RootCause)
	assert.Zero(t, report.ConfidenceScore)
	assert.Contains(t, report.Summary, "connection pool exhausted")
	assert.Contains(t, report.Summary, "research")
}

type failAfterScript struct {
	inner     *llm.ScriptedClient
	failAfter int
	calls     int
}

func (f *failAfterScript) Chat(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.calls++
	if f.calls > f.failAfter {
		return nil, sentinelerr.New(sentinelerr.CodeLLMUpstreamFailure, "gateway unreachable")
	}
	return f.inner.Chat(ctx, req)
}

type blockingClient struct{}

func (blockingClient) Chat(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAnalyzeTimeoutProducesSingleTimeoutStep(t *testing.T) {
	orch := newTestOrchestrator(t, blockingClient{}, orchestrator.WithTimeout(10*time.Millisecond))

	report := orch.Analyze(context.Background(), testAlert)
	require.NotNil(t, report)

	require.Len(t, report.AgentTrace, 1)
	assert.Equal(t, "timeout", report.AgentTrace[0].Action)
	assert.True(t, report.RequiresHumanApproval)
	assert.Contains(t, report.Summary, "deadline")
}
