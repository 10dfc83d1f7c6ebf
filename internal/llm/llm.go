// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

// Package llm abstracts the language-model gateway consumed by the agent
// pipeline. One production client exists per upstream API, plus a scripted
// client used by tests and the demo mode.
package llm

import "context"

// Client is the capability interface for a language-model gateway.
// Absence of tool calls in the response signals loop termination;
// implementations must never silently truncate tool calls.
type Client interface {
	Chat(ctx context.Context, req Request) (*Response, error)
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Request is one conversation turn sent to the gateway. Tools may be nil to
// disable tool use for this call.
type Request struct {
	System    string
	Messages  []Message
	Tools     []ToolSchema
	MaxTokens int
}

// Message is a single conversation entry. An assistant message may carry
// tool-use blocks; a user message may carry tool results.
type Message struct {
	Role        Role
	Content     string
	ToolUses    []ToolUse
	ToolResults []ToolResult
}

// ToolUse is a tool invocation requested by the model.
type ToolUse struct {
	ID    string
	Name  string
	Input map[string]any
}

// ToolResult reports the outcome of an executed tool back to the model.
type ToolResult struct {
	ToolUseID string
	Content   string
	IsError   bool
}

// ToolSchema describes one tool offered to the model.
type ToolSchema struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Usage tracks token consumption for a single gateway call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns the combined token count.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Add accumulates another call's usage into this one.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Response is the standardized gateway response.
type Response struct {
	Text       string
	ToolCalls  []ToolUse
	Usage      Usage
	Model      string
	StopReason string
}
