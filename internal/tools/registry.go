// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

// Package tools implements the closed tool registry the agent stages call
// into: log search, metrics, deployment history, the dependency graph, and
// runbook semantic search.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ojasavaparas/Sentinel/internal/incident"
	"github.com/ojasavaparas/Sentinel/internal/llm"
)

// Handler executes one tool call against the backing data.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// definition pairs a tool schema with its handler. The registry is closed:
// tools are registered at construction time and never after.
type definition struct {
	schema  llm.ToolSchema
	handler Handler
	costUSD float64
}

// Observer receives the latency of every executed tool call.
type Observer func(toolName string, latencySeconds float64)

// Registry routes tool calls by name and measures every execution. A
// malformed or hallucinated tool name from the model must never crash a
// stage, so Execute always returns a ToolCall; failures are carried as a
// structured error result.
type Registry struct {
	defs     map[string]definition
	order    []string
	observer Observer
}

// NewRegistry creates an empty registry. Populate it with RegisterSimulated
// and RegisterRunbookSearch before handing it to the pipeline.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]definition)}
}

// SetObserver installs an optional latency observer (e.g. prometheus).
func (r *Registry) SetObserver(obs Observer) {
	r.observer = obs
}

func (r *Registry) register(schema llm.ToolSchema, costUSD float64, h Handler) {
	if _, exists := r.defs[schema.Name]; !exists {
		r.order = append(r.order, schema.Name)
	}
	r.defs[schema.Name] = definition{schema: schema, handler: h, costUSD: costUSD}
}

// Schemas returns tool schemas filtered to the given names, preserving
// registration order. With no names it returns every schema.
func (r *Registry) Schemas(names ...string) []llm.ToolSchema {
	allowed := map[string]bool{}
	for _, n := range names {
		allowed[n] = true
	}

	var out []llm.ToolSchema
	for _, name := range r.order {
		if len(names) > 0 && !allowed[name] {
			continue
		}
		out = append(out, r.defs[name].schema)
	}
	return out
}

// Execute looks up the handler for toolName and runs it, measuring wall-clock
// latency. Unknown tools and handler errors are captured into the result
// rather than propagated.
func (r *Registry) Execute(ctx context.Context, toolName string, args map[string]any) incident.ToolCall {
	call := incident.ToolCall{
		ToolName:  toolName,
		Arguments: args,
	}

	def, ok := r.defs[toolName]
	if !ok {
		call.Result = map[string]any{"error": fmt.Sprintf("unknown tool: %s", toolName)}
		slog.Warn("unknown tool requested", "tool", toolName)
		return call
	}

	start := time.Now()
	result, err := def.handler(ctx, args)
	elapsed := time.Since(start)

	call.LatencyMS = float64(elapsed.Microseconds()) / 1000.0
	call.CostUSD = def.costUSD

	if err != nil {
		call.Result = map[string]any{"error": err.Error()}
		slog.Warn("tool call failed", "tool", toolName, "error", err)
	} else {
		call.Result = result
	}

	if r.observer != nil {
		r.observer(toolName, elapsed.Seconds())
	}

	return call
}
