// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package simulation

import (
	"time"

	"github.com/ojasavaparas/Sentinel/internal/incident"
)

// SeedReports returns historical incident reports loaded into the store at
// startup so the list endpoints are not empty on first use. Timestamps are
// relative to now; the incidents themselves are fixed.
func SeedReports() []*incident.IncidentReport {
	now := time.Now().UTC()

	return []*incident.IncidentReport{
		{
			IncidentID: "INC-7f3a1e92",
			Alert: incident.Alert{
				Service:     "payment-api",
				Description: "P99 latency spike to 2.1s, error rate at 15.2%",
				Severity:    incident.SeverityCritical,
				Timestamp:   now.Add(-72 * time.Hour),
			},
			Summary:         "Database connection pool exhaustion on payment-api caused by a deployment that reduced max pool size from 50 to 10. Cascading failures affected order-service and checkout-service downstream.",
			RootCause:       "Deployment a1bf3d2 changed DB connection pool max_size from 50 to 10 in payment-api config. Under normal load (~40 concurrent connections), the pool saturated within minutes, causing connection timeouts and 500 errors.",
			ConfidenceScore: 0.92,
			RemediationSteps: []string{
				"Revert payment-api config to restore max_pool_size=50 (kubectl rollback deployment/payment-api)",
				"Scale payment-api horizontally to 4 replicas to drain queued requests",
				"Add connection pool utilization alert at 80% threshold to prevent recurrence",
				"Implement config validation in CI to flag pool size changes below minimum baseline",
			},
			AgentTrace: []incident.AgentStep{
				{
					AgentName: "triage",
					Action:    "triage_classification",
					Reasoning: "Critical latency incident on revenue-impacting service. P99 at 2.1s (10x normal). Error rate 15.2%. DB pool at 98% utilization. Classification: resource-exhaustion, Priority: P1.",
					ToolCalls: []incident.ToolCall{
						{ToolName: "get_service_dependencies", Arguments: map[string]any{"service": "payment-api"}, Result: map[string]any{"dependencies": []string{"postgres-primary", "redis-cache"}}, LatencyMS: 1.2},
						{ToolName: "get_metrics", Arguments: map[string]any{"service": "payment-api"}, Result: map[string]any{"p99_latency_ms": 2100, "error_rate": 0.152}, LatencyMS: 2.1},
					},
					TokensUsed: 4079,
					CostUSD:    0.018,
					Timestamp:  now.Add(-72*time.Hour + 72*time.Second),
				},
				{
					AgentName: "research",
					Action:    "research_findings",
					Reasoning: "Correlated latency spike with deployment a1bf3d2. Config diff shows max_pool_size changed from 50 to 10. Pool utilization hit 100% within six minutes. All errors are connection timeout exceptions from the DB driver.",
					ToolCalls: []incident.ToolCall{
						{ToolName: "search_logs", Arguments: map[string]any{"service": "payment-api", "severity": "ERROR"}, Result: map[string]any{"count": 847, "top_error": "ConnectionPoolExhausted"}, LatencyMS: 3.4},
						{ToolName: "get_recent_deployments", Arguments: map[string]any{"service": "payment-api", "limit": 5}, Result: map[string]any{"head": "a1bf3d2"}, LatencyMS: 1.8},
					},
					TokensUsed: 8250,
					CostUSD:    0.062,
					Timestamp:  now.Add(-72*time.Hour + 165*time.Second),
				},
				{
					AgentName: "remediation",
					Action:    "remediation_plan",
					Reasoning: "Root cause confirmed: config regression in deployment a1bf3d2. Immediate fix is config rollback. Proposing 4-step remediation with safeguards against recurrence.",
					ToolCalls: []incident.ToolCall{
						{ToolName: "search_runbooks", Arguments: map[string]any{"query": "database connection pool exhaustion"}, Result: map[string]any{"top_result": "database-connection-pool-exhaustion.md"}, LatencyMS: 15.3},
					},
					TokensUsed: 3420,
					CostUSD:    0.025,
					Timestamp:  now.Add(-72*time.Hour + 238*time.Second),
				},
			},
			TotalTokens:           15749,
			TotalCostUSD:          0.105,
			DurationSeconds:       87.3,
			RequiresHumanApproval: true,
		},
		{
			IncidentID: "INC-b24c09d1",
			Alert: incident.Alert{
				Service:     "order-service",
				Description: "Kafka consumer lag exceeding 500k messages",
				Severity:    incident.SeverityHigh,
				Timestamp:   now.Add(-22 * time.Hour),
			},
			Summary:         "Kafka consumer group for order-service fell behind by 500k+ messages after inventory-service entered maintenance mode, causing retry storms that blocked consumer threads.",
			RootCause:       "inventory-service went into maintenance mode without updating the dependency status. order-service consumer retried failed inventory checks with exponential backoff, but the retry queue filled up and blocked partition consumption.",
			ConfidenceScore: 0.78,
			RemediationSteps: []string{
				"Increase consumer thread pool from 4 to 12 to process backlog",
				"Add circuit breaker on inventory-service calls with 5s timeout and fallback",
				"Reset consumer group offset to latest for non-critical partitions to skip stale messages",
			},
			AgentTrace: []incident.AgentStep{
				{
					AgentName: "triage",
					Action:    "triage_classification",
					Reasoning: "Kafka consumer lag on order-service. Classification: message-queue-lag, Priority: P2. Orders will be delayed but not lost.",
					ToolCalls: []incident.ToolCall{
						{ToolName: "get_metrics", Arguments: map[string]any{"service": "order-service"}, Result: map[string]any{"consumer_lag": 512000, "throughput_per_sec": 50}, LatencyMS: 1.8},
					},
					TokensUsed: 2900,
					CostUSD:    0.013,
					Timestamp:  now.Add(-22*time.Hour + 65*time.Second),
				},
				{
					AgentName: "research",
					Action:    "research_findings",
					Reasoning: "Lag started two minutes after inventory-service maintenance began. Consumer threads blocked on retry loops. No consumer crashes, just throughput collapse.",
					ToolCalls: []incident.ToolCall{
						{ToolName: "search_logs", Arguments: map[string]any{"service": "order-service", "query": "retry"}, Result: map[string]any{"count": 48000, "top_error": "RetryExhausted: inventory-service returned 503"}, LatencyMS: 4.5},
						{ToolName: "get_service_dependencies", Arguments: map[string]any{"service": "order-service"}, Result: map[string]any{"dependencies": []string{"inventory-service", "kafka-cluster"}}, LatencyMS: 0.9},
					},
					TokensUsed: 5600,
					CostUSD:    0.042,
					Timestamp:  now.Add(-22*time.Hour + 142*time.Second),
				},
				{
					AgentName:  "remediation",
					Action:     "remediation_plan",
					Reasoning:  "Consumer lag caused by retry storms. Need circuit breaker and increased parallelism to drain backlog.",
					TokensUsed: 2200,
					CostUSD:    0.016,
					Timestamp:  now.Add(-22*time.Hour + 190*time.Second),
				},
			},
			TotalTokens:           10700,
			TotalCostUSD:          0.071,
			DurationSeconds:       55.8,
			RequiresHumanApproval: true,
		},
		{
			IncidentID: "INC-e8f502a6",
			Alert: incident.Alert{
				Service:     "notification-service",
				Description: "Memory usage at 92%, OOMKill events detected",
				Severity:    incident.SeverityMedium,
				Timestamp:   now.Add(-5 * time.Hour),
			},
			Summary:         "Memory leak in notification-service caused by unbounded in-memory template cache. Each unique notification template variant was cached without eviction, growing to 2.1GB over 5 days since last restart.",
			RootCause:       "Template rendering engine caches compiled templates keyed by (template_id, locale, variant). With 200+ A/B test variants added last sprint, the cache grew unbounded from ~50MB to 2.1GB over 5 days without an eviction policy.",
			ConfidenceScore: 0.82,
			RemediationSteps: []string{
				"Restart notification-service pods to immediately reclaim memory",
				"Add LRU eviction with max_size=500 entries to the template cache",
				"Set memory limit alert at 80% with auto-restart at 90%",
			},
			AgentTrace: []incident.AgentStep{
				{
					AgentName: "triage",
					Action:    "triage_classification",
					Reasoning: "Memory at 92% with OOMKill events. Classification: resource-exhaustion (memory leak). Priority: P3. Service still functional but at risk of OOMKill.",
					ToolCalls: []incident.ToolCall{
						{ToolName: "get_metrics", Arguments: map[string]any{"service": "notification-service"}, Result: map[string]any{"memory_percent": 92, "oom_kills_24h": 3}, LatencyMS: 1.3},
					},
					TokensUsed: 2400,
					CostUSD:    0.011,
					Timestamp:  now.Add(-5*time.Hour + 68*time.Second),
				},
				{
					AgentName: "research",
					Action:    "research_findings",
					Reasoning: "Memory growth is linear over 5 days since last deploy. Heap dump shows template cache at 2.1GB. 200+ new A/B variants added last sprint multiplied cache entries.",
					ToolCalls: []incident.ToolCall{
						{ToolName: "search_logs", Arguments: map[string]any{"service": "notification-service", "severity": "WARN"}, Result: map[string]any{"count": 45, "top_error": "High memory utilization: 92%"}, LatencyMS: 2.9},
						{ToolName: "get_recent_deployments", Arguments: map[string]any{"service": "notification-service", "limit": 3}, Result: map[string]any{"head": "f8c2a11"}, LatencyMS: 1.4},
					},
					TokensUsed: 4800,
					CostUSD:    0.036,
					Timestamp:  now.Add(-5*time.Hour + 151*time.Second),
				},
				{
					AgentName:  "remediation",
					Action:     "remediation_plan",
					Reasoning:  "Memory leak from unbounded cache. Restart for immediate relief, then add LRU eviction.",
					TokensUsed: 1800,
					CostUSD:    0.013,
					Timestamp:  now.Add(-5*time.Hour + 195*time.Second),
				},
			},
			TotalTokens:           9000,
			TotalCostUSD:          0.060,
			DurationSeconds:       48.2,
			RequiresHumanApproval: false,
		},
	}
}
