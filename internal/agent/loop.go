// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ojasavaparas/Sentinel/internal/incident"
	"github.com/ojasavaparas/Sentinel/internal/llm"
	"github.com/ojasavaparas/Sentinel/internal/tools"
	"github.com/ojasavaparas/Sentinel/internal/trace"
)

// Stage iteration caps. Research is the only stage expected to need deep
// multi-tool investigation, so it gets the largest budget and a forced final
// answer when the budget runs out.
const (
	triageMaxIterations      = 4
	researchMaxIterations    = 8
	remediationMaxIterations = 3
)

// StageConfig specializes the shared loop for one stage.
type StageConfig struct {
	Name          string
	SystemPrompt  string
	MaxIterations int
	// ToolNames is the allowed tool subset offered to the model.
	ToolNames []string
	// ForceFinalAnswer makes the loop issue exactly one more model call with
	// tools disabled when the iteration cap is hit, so the stage always ends
	// on a free-text answer. Stages without it stop at the cap and rely on
	// their fallback parser.
	ForceFinalAnswer bool
}

// LoopResult is the raw outcome of one stage run before parsing.
type LoopResult struct {
	Text      string
	Usage     llm.Usage
	CostUSD   float64
	ToolCalls []incident.ToolCall
}

// Loop is the bounded request/act/observe cycle shared by all stages: send
// the conversation and allowed tool schemas to the gateway, execute any
// requested tools, append the results, and repeat until the model stops
// requesting tools or the iteration cap is hit.
type Loop struct {
	client   llm.Client
	registry *tools.Registry
	tracer   *trace.Tracer
	pricing  llm.Pricing
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithPricing overrides the pricing used to convert token usage to USD.
func WithPricing(p llm.Pricing) LoopOption {
	return func(l *Loop) { l.pricing = p }
}

// NewLoop creates a Loop. The tracer receives one step per executed tool.
func NewLoop(client llm.Client, registry *tools.Registry, tracer *trace.Tracer, opts ...LoopOption) *Loop {
	l := &Loop{
		client:   client,
		registry: registry,
		tracer:   tracer,
		pricing:  llm.DefaultPricing,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tracer exposes the loop's tracer so stage runners can log their terminal
// summary step to the same trace.
func (l *Loop) Tracer() *trace.Tracer {
	return l.tracer
}

// Cost converts accumulated usage to USD at the loop's pricing.
func (l *Loop) Cost(usage llm.Usage) float64 {
	return l.pricing.Cost(usage)
}

// Run executes the loop for one stage. A gateway error is not retried here;
// it propagates to the orchestrator, which owns degrade-and-continue. Tool
// failures never surface as errors: the registry folds them into results the
// model can read.
func (l *Loop) Run(ctx context.Context, cfg StageConfig, traceID string, conversation []llm.Message) (*LoopResult, error) {
	schemas := l.registry.Schemas(cfg.ToolNames...)
	result := &LoopResult{}

	messages := make([]llm.Message, len(conversation))
	copy(messages, conversation)

	for iteration := 0; iteration < cfg.MaxIterations; iteration++ {
		resp, err := l.client.Chat(ctx, llm.Request{
			System:   cfg.SystemPrompt,
			Messages: messages,
			Tools:    schemas,
		})
		if err != nil {
			return nil, err
		}
		result.Usage.Add(resp.Usage)
		result.Text = resp.Text

		if len(resp.ToolCalls) == 0 {
			result.CostUSD = l.pricing.Cost(result.Usage)
			return result, nil
		}

		// Echo the assistant turn, then execute each requested tool and
		// append its result. Tool calls within one turn run sequentially.
		messages = append(messages, llm.Message{
			Role:     llm.RoleAssistant,
			Content:  resp.Text,
			ToolUses: resp.ToolCalls,
		})

		var toolResults []llm.ToolResult
		for _, tu := range resp.ToolCalls {
			call := l.registry.Execute(ctx, tu.Name, tu.Input)
			result.ToolCalls = append(result.ToolCalls, call)

			l.tracer.LogStep(traceID, cfg.Name, "tool_call:"+tu.Name, "",
				[]incident.ToolCall{call}, 0, call.CostUSD)

			toolResults = append(toolResults, llm.ToolResult{
				ToolUseID: tu.ID,
				Content:   encodeToolResult(call.Result),
				IsError:   isErrorResult(call.Result),
			})
		}
		messages = append(messages, llm.Message{
			Role:        llm.RoleUser,
			ToolResults: toolResults,
		})
	}

	// Iteration cap reached while the model was still requesting tools.
	if cfg.ForceFinalAnswer {
		messages = append(messages, llm.Message{
			Role:    llm.RoleUser,
			Content: "You have reached the tool call limit. Provide your final answer now based on what you have found.",
		})
		resp, err := l.client.Chat(ctx, llm.Request{
			System:   cfg.SystemPrompt,
			Messages: messages,
		})
		if err != nil {
			return nil, err
		}
		result.Usage.Add(resp.Usage)
		result.Text = resp.Text
	}

	result.CostUSD = l.pricing.Cost(result.Usage)
	return result, nil
}

func encodeToolResult(result any) string {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf(`{"error":"unencodable tool result: %s"}`, err)
	}
	return string(raw)
}

func isErrorResult(result any) bool {
	m, ok := result.(map[string]any)
	if !ok {
		return false
	}
	_, hasErr := m["error"]
	return hasErr && len(m) == 1
}
