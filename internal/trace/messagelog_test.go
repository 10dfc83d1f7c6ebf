// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ojasavaparas/Sentinel/internal/incident"
)

func TestMessageLogPreservesInsertionOrder(t *testing.T) {
	log := NewMessageLog()

	log.Send("triage", "research", incident.MessageDelegate, map[string]any{"instructions": "dig in"}, "t1")
	log.Send("research", "remediation", incident.MessageDelegate, map[string]any{"root_cause": "pool"}, "t1")
	log.Send("remediation", "orchestrator", incident.MessageEscalate, map[string]any{"note": "approve first"}, "t1")

	messages := log.MessagesFor("t1")
	require.Len(t, messages, 3)
	assert.Equal(t, "triage", messages[0].FromAgent)
	assert.Equal(t, "remediation", messages[2].FromAgent)
	assert.Equal(t, incident.MessageEscalate, messages[2].Kind)
}

func TestMessageLogFiltersByTrace(t *testing.T) {
	log := NewMessageLog()
	log.Send("triage", "research", incident.MessageDelegate, nil, "t1")
	log.Send("triage", "research", incident.MessageDelegate, nil, "t2")

	assert.Len(t, log.MessagesFor("t1"), 1)
	assert.Len(t, log.MessagesFor("t2"), 1)
	assert.Empty(t, log.MessagesFor("t3"))
}

func TestMessagesForStage(t *testing.T) {
	log := NewMessageLog()
	log.Send("triage", "research", incident.MessageDelegate, nil, "t1")
	log.Send("research", "remediation", incident.MessageDelegate, nil, "t1")
	log.Send("remediation", "orchestrator", incident.MessageRespond, nil, "t1")

	research := log.MessagesForStage("t1", "research")
	require.Len(t, research, 2)
	assert.Equal(t, "triage", research[0].FromAgent)
	assert.Equal(t, "research", research[1].FromAgent)

	assert.Len(t, log.MessagesForStage("t1", "orchestrator"), 1)
	assert.Empty(t, log.MessagesForStage("t1", "bystander"))
}

func TestSendReturnsConstructedMessage(t *testing.T) {
	log := NewMessageLog()
	msg := log.Send("triage", "research", incident.MessageDelegate, map[string]any{"k": "v"}, "t9")

	assert.Equal(t, "t9", msg.TraceID)
	assert.Equal(t, incident.MessageDelegate, msg.Kind)
	assert.Equal(t, "v", msg.Content["k"])
}
