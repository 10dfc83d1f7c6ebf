// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package incident

// IncidentReport is the complete, auditable result of running one alert
// through the pipeline. It is assembled exactly once at the end of a run.
type IncidentReport struct {
	IncidentID            string      `json:"incident_id"`
	Alert                 Alert       `json:"alert"`
	Summary               string      `json:"summary"`
	RootCause             string      `json:"root_cause"`
	ConfidenceScore       float64     `json:"confidence_score"`
	RemediationSteps      []string    `json:"remediation_steps"`
	AgentTrace            []AgentStep `json:"agent_trace"`
	TotalTokens           int         `json:"total_tokens"`
	TotalCostUSD          float64     `json:"total_cost_usd"`
	DurationSeconds       float64     `json:"duration_seconds"`
	RequiresHumanApproval bool        `json:"requires_human_approval"`
}

// ClampConfidence bounds a model-reported confidence score to [0, 1].
func ClampConfidence(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
