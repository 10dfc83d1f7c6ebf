// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package incident

// MessageKind is the type of an inter-stage handoff.
type MessageKind string

const (
	// MessageDelegate hands an in-progress investigation to the next stage.
	MessageDelegate MessageKind = "delegate"
	// MessageRespond is the terminal handoff of a completed remediation plan.
	MessageRespond MessageKind = "respond"
	// MessageEscalate is the terminal handoff when the plan still requires
	// human approval before any proposed action is taken.
	MessageEscalate MessageKind = "escalate"
)

// AgentMessage is one directed handoff between named stages. The message log
// is a forensic record, not a queue: entries are appended once and never
// deduplicated or deleted.
type AgentMessage struct {
	FromAgent string         `json:"from_agent"`
	ToAgent   string         `json:"to_agent"`
	Kind      MessageKind    `json:"message_type"`
	Content   map[string]any `json:"content"`
	TraceID   string         `json:"trace_id"`
}
