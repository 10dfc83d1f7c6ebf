// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package monitoring

import (
	"sync"

	"github.com/ojasavaparas/Sentinel/internal/incident"
)

// CostSummary is a point-in-time view of accumulated spend.
type CostSummary struct {
	TotalIncidents int                `json:"total_incidents"`
	TotalTokens    int                `json:"total_tokens"`
	TotalCostUSD   float64            `json:"total_cost_usd"`
	CostByAgent    map[string]float64 `json:"cost_by_agent"`
}

// CostTracker accumulates token and dollar spend across analyses. Safe for
// concurrent use.
type CostTracker struct {
	mu        sync.Mutex
	incidents int
	tokens    int
	costUSD   float64
	byAgent   map[string]float64
}

// NewCostTracker returns an empty tracker.
func NewCostTracker() *CostTracker {
	return &CostTracker{byAgent: make(map[string]float64)}
}

// Record folds a finished report into the running totals.
func (t *CostTracker) Record(report *incident.IncidentReport) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.incidents++
	t.tokens += report.TotalTokens
	t.costUSD += report.TotalCostUSD
	for _, step := range report.AgentTrace {
		if step.CostUSD > 0 {
			t.byAgent[step.AgentName] += step.CostUSD
		}
	}
}

// Summary returns a copy of the current totals.
func (t *CostTracker) Summary() CostSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	byAgent := make(map[string]float64, len(t.byAgent))
	for agent, cost := range t.byAgent {
		byAgent[agent] = cost
	}
	return CostSummary{
		TotalIncidents: t.incidents,
		TotalTokens:    t.tokens,
		TotalCostUSD:   t.costUSD,
		CostByAgent:    byAgent,
	}
}
