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
)

func collectEvents(t *testing.T, ch <-chan incident.StreamEvent) []incident.StreamEvent {
	t.Helper()
	var events []incident.StreamEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out waiting for stream to close")
		}
	}
}

func TestAnalyzeStreamEventOrdering(t *testing.T) {
	client := llm.NewScriptedClient(
		textResponse(triageJSON),
		textResponse(researchJSON),
		textResponse(remediationJSON),
	)
	orch := newTestOrchestrator(t, client)

	events := collectEvents(t, orch.AnalyzeStream(context.Background(), testAlert))
	require.NotEmpty(t, events)

	var types []incident.EventType
	var agents []string
	for _, ev := range events {
		types = append(types, ev.Type)
		agents = append(agents, ev.AgentName)
	}

	assert.Equal(t, []incident.EventType{
		incident.EventAgentStart, incident.EventAgentComplete,
		incident.EventAgentStart, incident.EventAgentComplete,
		incident.EventAgentStart, incident.EventAgentComplete,
		incident.EventAnalysisComplete,
	}, types)
	assert.Equal(t, []string{
		"triage", "triage",
		"research", "research",
		"remediation", "remediation",
		"orchestrator",
	}, agents)
}

func TestAnalyzeStreamFinalEventCarriesReport(t *testing.T) {
	client := llm.NewScriptedClient(
		textResponse(triageJSON),
		textResponse(researchJSON),
		textResponse(remediationJSON),
	)
	orch := newTestOrchestrator(t, client)

	events := collectEvents(t, orch.AnalyzeStream(context.Background(), testAlert))
	last := events[len(events)-1]
	require.Equal(t, incident.EventAnalysisComplete, last.Type)

	report, ok := last.Data["report"].(*incident.IncidentReport)
	require.True(t, ok)

	// Structurally identical to the sequential path.
	assert.Equal(t, "deployment a3f8c21 reduced the pool from 50 to 20", report.RootCause)
	assert.Equal(t, 0.92, report.ConfidenceScore)
	assert.True(t, report.RequiresHumanApproval)
	require.Len(t, report.AgentTrace, 3)
	assert.Equal(t, 900, report.TotalTokens)
}

func TestAnalyzeStreamEmitsToolCallEvents(t *testing.T) {
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

	events := collectEvents(t, orch.AnalyzeStream(context.Background(), testAlert))

	var toolEvents []incident.StreamEvent
	for _, ev := range events {
		if ev.Type == incident.EventToolCall {
			toolEvents = append(toolEvents, ev)
		}
	}
	require.Len(t, toolEvents, 1)
	assert.Equal(t, "triage", toolEvents[0].AgentName)
	assert.Equal(t, "get_metrics", toolEvents[0].Data["tool_name"])
}

func TestAnalyzeStreamEmitsErrorEvent(t *testing.T) {
	orch := newTestOrchestrator(t, erroringClient{})

	events := collectEvents(t, orch.AnalyzeStream(context.Background(), testAlert))

	var sawError bool
	for _, ev := range events {
		if ev.Type == incident.EventError {
			sawError = true
			assert.Equal(t, "triage", ev.AgentName)
		}
	}
	assert.True(t, sawError)

	// The degraded report still arrives as the final event.
	last := events[len(events)-1]
	require.Equal(t, incident.EventAnalysisComplete, last.Type)
	report := last.Data["report"].(*incident.IncidentReport)
	assert.True(t, report.RequiresHumanApproval)
}

func TestAnalyzeStreamSlowConsumerDoesNotStallPipeline(t *testing.T) {
	client := llm.NewScriptedClient(
		textResponse(triageJSON),
		textResponse(researchJSON),
		textResponse(remediationJSON),
	)
	orch := newTestOrchestrator(t, client)

	ch := orch.AnalyzeStream(context.Background(), testAlert)

	// Give the pipeline time to finish before reading anything. The
	// unbounded queue must absorb every event in the meantime.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 3, client.CallCount())

	events := collectEvents(t, ch)
	assert.Equal(t, incident.EventAnalysisComplete, events[len(events)-1].Type)
}
