// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package trace

import (
	"log/slog"
	"sync"

	"github.com/ojasavaparas/Sentinel/internal/incident"
)

// MessageLog is the forensic record of directed handoffs between stages.
// Entries are appended in real handoff order and never deleted.
type MessageLog struct {
	mu       sync.Mutex
	messages []incident.AgentMessage
}

// NewMessageLog creates an empty MessageLog.
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Send constructs an AgentMessage, appends it, and returns it.
func (l *MessageLog) Send(fromAgent, toAgent string, kind incident.MessageKind, content map[string]any, traceID string) incident.AgentMessage {
	msg := incident.AgentMessage{
		FromAgent: fromAgent,
		ToAgent:   toAgent,
		Kind:      kind,
		Content:   content,
		TraceID:   traceID,
	}

	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()

	slog.Info("agent handoff",
		"trace_id", traceID,
		"from", fromAgent,
		"to", toAgent,
		"kind", string(kind),
	)

	return msg
}

// MessagesFor returns all messages for a trace id in insertion order.
func (l *MessageLog) MessagesFor(traceID string) []incident.AgentMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []incident.AgentMessage
	for _, msg := range l.messages {
		if msg.TraceID == traceID {
			out = append(out, msg)
		}
	}
	return out
}

// MessagesForStage returns messages for a trace id sent to or from the stage.
func (l *MessageLog) MessagesForStage(traceID, stage string) []incident.AgentMessage {
	var out []incident.AgentMessage
	for _, msg := range l.MessagesFor(traceID) {
		if msg.FromAgent == stage || msg.ToAgent == stage {
			out = append(out, msg)
		}
	}
	return out
}
