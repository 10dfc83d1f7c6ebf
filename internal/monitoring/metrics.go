// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

// Package monitoring exposes Prometheus metrics and running cost totals for
// the analysis pipeline.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ojasavaparas/Sentinel/internal/incident"
)

// Metrics holds the pipeline's Prometheus collectors. All collectors are
// registered on the registry passed to NewMetrics, never on a global.
type Metrics struct {
	incidentsAnalyzed *prometheus.CounterVec
	incidentDuration  prometheus.Histogram
	agentTokens       *prometheus.CounterVec
	agentCost         *prometheus.CounterVec
	toolCallDuration  *prometheus.HistogramVec
	activeIncidents   prometheus.Gauge
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		incidentsAnalyzed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_incidents_analyzed_total",
			Help: "Completed incident analyses by outcome.",
		}, []string{"status"}),
		incidentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_incident_duration_seconds",
			Help:    "Wall-clock duration of full incident analyses.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		agentTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_agent_tokens_used_total",
			Help: "LLM tokens consumed per agent.",
		}, []string{"agent"}),
		agentCost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_agent_cost_usd_total",
			Help: "Estimated USD cost per agent.",
		}, []string{"agent"}),
		toolCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sentinel_tool_call_duration_seconds",
			Help:    "Tool execution latency by tool name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		activeIncidents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentinel_active_incidents",
			Help: "Analyses currently in flight.",
		}),
	}
	reg.MustRegister(
		m.incidentsAnalyzed,
		m.incidentDuration,
		m.agentTokens,
		m.agentCost,
		m.toolCallDuration,
		m.activeIncidents,
	)
	return m
}

// AnalysisStarted marks an analysis as in flight.
func (m *Metrics) AnalysisStarted() {
	m.activeIncidents.Inc()
}

// AnalysisFinished records the outcome of a completed analysis and walks
// the trace for per-agent token and cost attribution.
func (m *Metrics) AnalysisFinished(report *incident.IncidentReport) {
	m.activeIncidents.Dec()

	status := "completed"
	if report.RootCause == "analysis incomplete" {
		status = "degraded"
	}
	m.incidentsAnalyzed.WithLabelValues(status).Inc()
	m.incidentDuration.Observe(report.DurationSeconds)

	for _, step := range report.AgentTrace {
		if step.TokensUsed > 0 {
			m.agentTokens.WithLabelValues(step.AgentName).Add(float64(step.TokensUsed))
		}
		if step.CostUSD > 0 {
			m.agentCost.WithLabelValues(step.AgentName).Add(step.CostUSD)
		}
	}
}

// ObserveTool records one tool execution. The signature matches the tool
// registry's observer hook.
func (m *Metrics) ObserveTool(toolName string, latencySeconds float64) {
	m.toolCallDuration.WithLabelValues(toolName).Observe(latencySeconds)
}
