// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONDirect(t *testing.T) {
	out, ok := ExtractJSON(`{"classification": "resource-exhaustion", "priority": "P1"}`)
	require.True(t, ok)
	assert.Equal(t, "resource-exhaustion", out["classification"])
	assert.Equal(t, "P1", out["priority"])
}

func TestExtractJSONStripsCodeFences(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"json fence", "```json\n{\"root_cause\": \"pool exhausted\"}\n```"},
		{"bare fence", "```\n{\"root_cause\": \"pool exhausted\"}\n```"},
		{"fence with trailing whitespace", "```json  \n{\"root_cause\": \"pool exhausted\"}\n```  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := ExtractJSON(tt.text)
			require.True(t, ok)
			assert.Equal(t, "pool exhausted", out["root_cause"])
		})
	}
}

func TestExtractJSONEmbeddedInProse(t *testing.T) {
	text := `Based on my investigation, here is my conclusion:
{"confidence": 0.92, "root_cause": "deployment a3f8c21 shrank the pool"}
Let me know if you need more detail.`

	out, ok := ExtractJSON(text)
	require.True(t, ok)
	assert.Equal(t, 0.92, out["confidence"])
}

func TestExtractJSONFailure(t *testing.T) {
	for _, text := range []string{"", "no json here", "{broken", "[1, 2, 3]"} {
		out, ok := ExtractJSON(text)
		assert.False(t, ok, "input %q", text)
		assert.Nil(t, out)
	}
}

func TestFieldHelpers(t *testing.T) {
	m := map[string]any{
		"name":     "payment-api",
		"score":    0.7,
		"steps":    []any{"first", "second", 3},
		"approved": false,
	}

	assert.Equal(t, "payment-api", stringField(m, "name"))
	assert.Equal(t, "", stringField(m, "missing"))

	score, ok := floatField(m, "score")
	assert.True(t, ok)
	assert.Equal(t, 0.7, score)
	_, ok = floatField(m, "name")
	assert.False(t, ok)

	// Non-string elements are dropped, not stringified.
	assert.Equal(t, []string{"first", "second"}, stringsField(m, "steps"))
	assert.Empty(t, stringsField(m, "missing"))

	v, present := boolField(m, "approved")
	assert.True(t, present)
	assert.False(t, v)
	_, present = boolField(m, "missing")
	assert.False(t, present)
}
