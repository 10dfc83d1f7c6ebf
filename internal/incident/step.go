// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package incident

import "time"

// ToolCall records a single tool invocation made on behalf of a stage.
// Once constructed it is never mutated; the AgentStep that produced it owns it.
type ToolCall struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
	Result    any            `json:"result"`
	LatencyMS float64        `json:"latency_ms"`
	CostUSD   float64        `json:"cost_usd"`
}

// AgentStep is a single reasoning + action step taken by a stage. It is the
// fundamental unit of the audit trail and is immutable once appended to a trace.
type AgentStep struct {
	AgentName  string     `json:"agent_name"`
	Action     string     `json:"action"`
	Reasoning  string     `json:"reasoning"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	TokensUsed int        `json:"tokens_used"`
	CostUSD    float64    `json:"cost_usd"`
	Timestamp  time.Time  `json:"timestamp"`
}
