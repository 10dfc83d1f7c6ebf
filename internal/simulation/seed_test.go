// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package simulation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ojasavaparas/Sentinel/internal/simulation"
)

func TestSeedReports(t *testing.T) {
	reports := simulation.SeedReports()
	require.Len(t, reports, 3)

	seen := map[string]bool{}
	for _, r := range reports {
		assert.NotEmpty(t, r.IncidentID)
		assert.False(t, seen[r.IncidentID], "duplicate incident id %s", r.IncidentID)
		seen[r.IncidentID] = true

		assert.NotEmpty(t, r.Alert.Service)
		assert.NotEmpty(t, r.RootCause)
		assert.NotEmpty(t, r.RemediationSteps)
		require.Len(t, r.AgentTrace, 3)

		tokens := 0
		cost := 0.0
		for _, step := range r.AgentTrace {
			tokens += step.TokensUsed
			cost += step.CostUSD
		}
		assert.Equal(t, r.TotalTokens, tokens, "%s totals must match the trace", r.IncidentID)
		assert.InDelta(t, r.TotalCostUSD, cost, 1e-9)

		assert.GreaterOrEqual(t, r.ConfidenceScore, 0.0)
		assert.LessOrEqual(t, r.ConfidenceScore, 1.0)
		assert.False(t, math.IsNaN(r.ConfidenceScore))
	}
}
