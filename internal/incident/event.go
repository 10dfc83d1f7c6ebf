// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package incident

// EventType identifies a streaming lifecycle event.
type EventType string

const (
	EventAgentStart       EventType = "agent_start"
	EventAgentComplete    EventType = "agent_complete"
	EventToolCall         EventType = "tool_call"
	EventError            EventType = "error"
	EventAnalysisComplete EventType = "analysis_complete"
)

// StreamEvent is a transient lifecycle event emitted on the streaming path.
// It exists only on the event channel and is never persisted.
type StreamEvent struct {
	Type      EventType      `json:"event_type"`
	AgentName string         `json:"agent_name,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}
