// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ojasavaparas/Sentinel/internal/llm"
	"github.com/ojasavaparas/Sentinel/internal/simulation"
	"github.com/ojasavaparas/Sentinel/internal/tools"
	"github.com/ojasavaparas/Sentinel/internal/trace"
	sentinelerr "github.com/ojasavaparas/Sentinel/pkg/errors"
)

func newTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	dataset, err := simulation.Load()
	require.NoError(t, err)
	registry := tools.NewRegistry()
	registry.RegisterSimulated(dataset)
	return registry
}

func toolResponse(name string, input map[string]any) *llm.Response {
	return &llm.Response{
		Text: "Let me check.",
		ToolCalls: []llm.ToolUse{
			{ID: "tu_" + name, Name: name, Input: input},
		},
		Usage:      llm.Usage{InputTokens: 100, OutputTokens: 50},
		StopReason: "tool_use",
	}
}

func finalResponse(text string) *llm.Response {
	return &llm.Response{
		Text:       text,
		Usage:      llm.Usage{InputTokens: 200, OutputTokens: 100},
		StopReason: "end_turn",
	}
}

func TestLoopStopsWhenModelStopsRequestingTools(t *testing.T) {
	client := llm.NewScriptedClient(finalResponse("done"))
	tracer := trace.NewTracer(nil)
	loop := NewLoop(client, newTestRegistry(t), tracer)

	result, err := loop.Run(context.Background(), StageConfig{
		Name:          "triage",
		SystemPrompt:  "system",
		MaxIterations: 4,
	}, "trace-1", []llm.Message{{Role: llm.RoleUser, Content: "alert"}})

	require.NoError(t, err)
	assert.Equal(t, "done", result.Text)
	assert.Equal(t, 1, client.CallCount())
	assert.Empty(t, result.ToolCalls)
	assert.Equal(t, llm.DefaultPricing.Cost(llm.Usage{InputTokens: 200, OutputTokens: 100}), result.CostUSD)
}

func TestLoopExecutesRequestedToolsAndFeedsResultsBack(t *testing.T) {
	client := llm.NewScriptedClient(
		toolResponse("get_metrics", map[string]any{"service": "payment-api"}),
		finalResponse(`{"classification": "resource-exhaustion"}`),
	)
	tracer := trace.NewTracer(nil)
	loop := NewLoop(client, newTestRegistry(t), tracer)

	result, err := loop.Run(context.Background(), StageConfig{
		Name:          "triage",
		SystemPrompt:  "system",
		MaxIterations: 4,
		ToolNames:     []string{"get_metrics", "get_service_dependencies"},
	}, "trace-2", []llm.Message{{Role: llm.RoleUser, Content: "alert"}})

	require.NoError(t, err)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "get_metrics", result.ToolCalls[0].ToolName)

	// The tool execution is traced as its own step carrying only tool cost.
	steps := tracer.Get("trace-2")
	require.Len(t, steps, 1)
	assert.Equal(t, "tool_call:get_metrics", steps[0].Action)
	assert.Zero(t, steps[0].TokensUsed)

	// The second request must carry the assistant turn and the tool result.
	history := client.History()
	require.Len(t, history, 2)
	messages := history[1].Messages
	require.Len(t, messages, 3)
	assert.Equal(t, llm.RoleAssistant, messages[1].Role)
	require.Len(t, messages[2].ToolResults, 1)
	assert.Equal(t, "tu_get_metrics", messages[2].ToolResults[0].ToolUseID)
	assert.False(t, messages[2].ToolResults[0].IsError)
}

func TestLoopUnknownToolFoldsIntoResult(t *testing.T) {
	client := llm.NewScriptedClient(
		toolResponse("launch_missiles", nil),
		finalResponse("ok"),
	)
	loop := NewLoop(client, newTestRegistry(t), trace.NewTracer(nil))

	result, err := loop.Run(context.Background(), StageConfig{
		Name:          "triage",
		SystemPrompt:  "system",
		MaxIterations: 4,
	}, "trace-3", []llm.Message{{Role: llm.RoleUser, Content: "alert"}})

	require.NoError(t, err)
	require.Len(t, result.ToolCalls, 1)

	history := client.History()
	require.Len(t, history, 2)
	toolResults := history[1].Messages[2].ToolResults
	require.Len(t, toolResults, 1)
	assert.True(t, toolResults[0].IsError)
	assert.Contains(t, toolResults[0].Content, "unknown tool")
}

func TestLoopRespectsIterationCap(t *testing.T) {
	responses := make([]*llm.Response, triageMaxIterations)
	for i := range responses {
		responses[i] = toolResponse("get_metrics", map[string]any{"service": "payment-api"})
	}
	client := llm.NewScriptedClient(responses...)
	loop := NewLoop(client, newTestRegistry(t), trace.NewTracer(nil))

	_, err := loop.Run(context.Background(), StageConfig{
		Name:          "triage",
		SystemPrompt:  "system",
		MaxIterations: triageMaxIterations,
	}, "trace-4", []llm.Message{{Role: llm.RoleUser, Content: "alert"}})

	require.NoError(t, err)
	assert.Equal(t, triageMaxIterations, client.CallCount())
}

func TestLoopForcesFinalAnswerAtCap(t *testing.T) {
	responses := make([]*llm.Response, researchMaxIterations)
	for i := range responses {
		responses[i] = toolResponse("search_logs", map[string]any{"service": "payment-api"})
	}
	client := llm.NewScriptedClient(responses...)
	client.AddResponse(finalResponse(`{"root_cause": "pool exhausted", "confidence": 0.9}`))
	loop := NewLoop(client, newTestRegistry(t), trace.NewTracer(nil))

	result, err := loop.Run(context.Background(), StageConfig{
		Name:             "research",
		SystemPrompt:     "system",
		MaxIterations:    researchMaxIterations,
		ForceFinalAnswer: true,
	}, "trace-5", []llm.Message{{Role: llm.RoleUser, Content: "alert"}})

	require.NoError(t, err)
	assert.Equal(t, researchMaxIterations+1, client.CallCount())
	assert.Contains(t, result.Text, "pool exhausted")

	// The forced final request must not offer tools.
	history := client.History()
	last := history[len(history)-1]
	assert.Empty(t, last.Tools)
	assert.Contains(t, last.Messages[len(last.Messages)-1].Content, "tool call limit")
}

type erroringClient struct{}

func (erroringClient) Chat(context.Context, llm.Request) (*llm.Response, error) {
	return nil, sentinelerr.New(sentinelerr.CodeLLMUpstreamFailure, "gateway unreachable")
}

func TestLoopPropagatesGatewayErrors(t *testing.T) {
	loop := NewLoop(erroringClient{}, newTestRegistry(t), trace.NewTracer(nil))

	_, err := loop.Run(context.Background(), StageConfig{
		Name:          "triage",
		SystemPrompt:  "system",
		MaxIterations: 4,
	}, "trace-6", []llm.Message{{Role: llm.RoleUser, Content: "alert"}})

	require.Error(t, err)
	assert.True(t, sentinelerr.HasCode(err, sentinelerr.CodeLLMUpstreamFailure))
}
