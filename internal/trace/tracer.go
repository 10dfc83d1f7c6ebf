// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

// Package trace holds the append-only audit records for a pipeline run:
// the decision trace of agent steps and the inter-stage message log.
package trace

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ojasavaparas/Sentinel/internal/incident"
)

// EventSink receives a live copy of stream events derived from logged steps.
// Sinks must not block; the tracer calls them synchronously.
type EventSink func(incident.StreamEvent)

// Tracer records every agent decision for auditability. Steps are append-only:
// once logged they are never mutated or removed, so token and cost totals are
// always exact sums over the trace.
type Tracer struct {
	mu     sync.Mutex
	traces map[string][]incident.AgentStep
	sink   EventSink
}

// NewTracer creates an empty Tracer. sink may be nil; when set, every tool
// call inside a logged step is mirrored as a tool_call stream event.
func NewTracer(sink EventSink) *Tracer {
	return &Tracer{
		traces: make(map[string][]incident.AgentStep),
		sink:   sink,
	}
}

// Start initializes an empty step sequence for the trace id. Re-initializing
// an existing id clears its prior steps; streaming runs use this to get an
// isolated trace.
func (t *Tracer) Start(traceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.traces[traceID] = nil
}

// LogStep constructs an AgentStep with the current timestamp and appends it.
// Logging is best-effort observability: it never fails the caller.
func (t *Tracer) LogStep(traceID, agentName, action, reasoning string, toolCalls []incident.ToolCall, tokensUsed int, costUSD float64) {
	step := incident.AgentStep{
		AgentName:  agentName,
		Action:     action,
		Reasoning:  reasoning,
		ToolCalls:  toolCalls,
		TokensUsed: tokensUsed,
		CostUSD:    costUSD,
		Timestamp:  time.Now().UTC(),
	}

	t.mu.Lock()
	t.traces[traceID] = append(t.traces[traceID], step)
	sink := t.sink
	t.mu.Unlock()

	slog.Info("agent step",
		"trace_id", traceID,
		"agent", agentName,
		"action", action,
		"tool_calls", len(toolCalls),
		"tokens_used", tokensUsed,
		"cost_usd", costUSD,
	)

	if sink != nil {
		for _, tc := range toolCalls {
			sink(incident.StreamEvent{
				Type:      incident.EventToolCall,
				AgentName: agentName,
				Data: map[string]any{
					"tool_name":  tc.ToolName,
					"latency_ms": tc.LatencyMS,
				},
			})
		}
	}
}

// Get returns the full ordered step sequence for the trace id. Unknown ids
// yield an empty slice, never an error. The returned slice is a copy.
func (t *Tracer) Get(traceID string) []incident.AgentStep {
	t.mu.Lock()
	defer t.mu.Unlock()

	steps := t.traces[traceID]
	out := make([]incident.AgentStep, len(steps))
	copy(out, steps)
	return out
}

// TotalTokens sums tokens over all steps of the trace.
func (t *Tracer) TotalTokens(traceID string) int {
	total := 0
	for _, step := range t.Get(traceID) {
		total += step.TokensUsed
	}
	return total
}

// TotalCost sums cost over all steps of the trace.
func (t *Tracer) TotalCost(traceID string) float64 {
	total := 0.0
	for _, step := range t.Get(traceID) {
		total += step.CostUSD
	}
	return total
}
