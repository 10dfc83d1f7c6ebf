// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ojasavaparas/Sentinel/internal/llm"
	"github.com/ojasavaparas/Sentinel/internal/simulation"
)

const defaultDeploymentLimit = 5

// RegisterSimulated wires the four deterministic lookup tools against the
// fixture dataset.
func (r *Registry) RegisterSimulated(ds *simulation.Dataset) {
	r.register(llm.ToolSchema{
		Name:        "search_logs",
		Description: "Search service logs with optional severity, time range, and substring filters. Returns matching entries sorted by timestamp.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"service":    map[string]any{"type": "string", "description": "Service name to filter by"},
				"severity":   map[string]any{"type": "string", "description": "Log level filter (INFO, WARN, ERROR)"},
				"time_start": map[string]any{"type": "string", "description": "ISO timestamp lower bound (inclusive)"},
				"time_end":   map[string]any{"type": "string", "description": "ISO timestamp upper bound (inclusive)"},
				"query":      map[string]any{"type": "string", "description": "Substring to match against the log message"},
			},
			"required": []any{"service"},
		},
	}, 0, r.searchLogs(ds))

	r.register(llm.ToolSchema{
		Name:        "get_metrics",
		Description: "Retrieve time-series metrics for a service (latency_p99, error_rate, cpu_usage, memory_usage, connection_pool_usage, request_rate).",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"service":     map[string]any{"type": "string", "description": "Service name"},
				"metric_name": map[string]any{"type": "string", "description": "Metric to retrieve; omit for all metrics"},
				"time_start":  map[string]any{"type": "string", "description": "ISO timestamp lower bound (inclusive)"},
				"time_end":    map[string]any{"type": "string", "description": "ISO timestamp upper bound (inclusive)"},
			},
			"required": []any{"service"},
		},
	}, 0, r.getMetrics(ds))

	r.register(llm.ToolSchema{
		Name:        "get_recent_deployments",
		Description: "Retrieve recent deployments, most recent first, optionally filtered by service.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"service": map[string]any{"type": "string", "description": "Service name; omit for all services"},
				"limit":   map[string]any{"type": "integer", "description": "Maximum number of deployments to return (default 5)"},
			},
		},
	}, 0, r.getRecentDeployments(ds))

	r.register(llm.ToolSchema{
		Name:        "get_service_dependencies",
		Description: "Look up the dependency graph for a service, including the health of each dependency, for blast-radius assessment.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"service": map[string]any{"type": "string", "description": "Service name"},
			},
			"required": []any{"service"},
		},
	}, 0, r.getServiceDependencies(ds))
}

func (r *Registry) searchLogs(ds *simulation.Dataset) Handler {
	return func(_ context.Context, args map[string]any) (any, error) {
		service := stringArg(args, "service")
		if service == "" {
			return nil, fmt.Errorf("search_logs: service is required")
		}

		var results []simulation.LogEntry
		for _, entry := range ds.Logs {
			if entry.Service == service {
				results = append(results, entry)
			}
		}

		if severity := stringArg(args, "severity"); severity != "" {
			results = filterLogs(results, func(e simulation.LogEntry) bool {
				return e.Level == strings.ToUpper(severity)
			})
		}

		start, end, err := timeRange(args)
		if err != nil {
			return nil, err
		}
		if !start.IsZero() {
			results = filterLogs(results, func(e simulation.LogEntry) bool {
				return !e.Timestamp.Before(start)
			})
		}
		if !end.IsZero() {
			results = filterLogs(results, func(e simulation.LogEntry) bool {
				return !e.Timestamp.After(end)
			})
		}

		if query := stringArg(args, "query"); query != "" {
			q := strings.ToLower(query)
			results = filterLogs(results, func(e simulation.LogEntry) bool {
				return strings.Contains(strings.ToLower(e.Message), q)
			})
		}

		sort.Slice(results, func(i, j int) bool {
			return results[i].Timestamp.Before(results[j].Timestamp)
		})

		if results == nil {
			results = []simulation.LogEntry{}
		}
		return results, nil
	}
}

func (r *Registry) getMetrics(ds *simulation.Dataset) Handler {
	return func(_ context.Context, args map[string]any) (any, error) {
		service := stringArg(args, "service")
		if service == "" {
			return nil, fmt.Errorf("get_metrics: service is required")
		}

		metricName := stringArg(args, "metric_name")
		start, end, err := timeRange(args)
		if err != nil {
			return nil, err
		}

		var results []simulation.MetricPoint
		for _, point := range ds.Metrics {
			if point.Service != service {
				continue
			}
			if metricName != "" && point.MetricName != metricName {
				continue
			}
			if !start.IsZero() && point.Timestamp.Before(start) {
				continue
			}
			if !end.IsZero() && point.Timestamp.After(end) {
				continue
			}
			results = append(results, point)
		}

		sort.Slice(results, func(i, j int) bool {
			return results[i].Timestamp.Before(results[j].Timestamp)
		})

		if results == nil {
			results = []simulation.MetricPoint{}
		}
		return results, nil
	}
}

func (r *Registry) getRecentDeployments(ds *simulation.Dataset) Handler {
	return func(_ context.Context, args map[string]any) (any, error) {
		service := stringArg(args, "service")

		limit := intArg(args, "limit", defaultDeploymentLimit)
		if limit <= 0 {
			limit = defaultDeploymentLimit
		}

		var results []simulation.Deployment
		for _, d := range ds.Deployments {
			if service != "" && d.Service != service {
				continue
			}
			results = append(results, d)
		}

		sort.Slice(results, func(i, j int) bool {
			return results[i].Timestamp.After(results[j].Timestamp)
		})

		if len(results) > limit {
			results = results[:limit]
		}
		if results == nil {
			results = []simulation.Deployment{}
		}
		return results, nil
	}
}

func (r *Registry) getServiceDependencies(ds *simulation.Dataset) Handler {
	return func(_ context.Context, args map[string]any) (any, error) {
		service := stringArg(args, "service")
		if service == "" {
			return nil, fmt.Errorf("get_service_dependencies: service is required")
		}

		deps, ok := ds.Dependencies[service]
		if !ok {
			return map[string]any{
				"error": fmt.Sprintf("unknown service: %s", service),
			}, nil
		}

		degraded := 0
		for _, d := range deps {
			if d.HealthStatus != "healthy" {
				degraded++
			}
		}

		return map[string]any{
			"service":               service,
			"dependencies":          deps,
			"total_dependencies":    len(deps),
			"degraded_dependencies": degraded,
		}, nil
	}
}

func filterLogs(entries []simulation.LogEntry, keep func(simulation.LogEntry) bool) []simulation.LogEntry {
	var out []simulation.LogEntry
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func timeRange(args map[string]any) (time.Time, time.Time, error) {
	var start, end time.Time

	if raw := stringArg(args, "time_start"); raw != "" {
		t, err := parseTimestamp(raw)
		if err != nil {
			return start, end, fmt.Errorf("invalid time_start %q: %w", raw, err)
		}
		start = t
	}
	if raw := stringArg(args, "time_end"); raw != "" {
		t, err := parseTimestamp(raw)
		if err != nil {
			return start, end, fmt.Errorf("invalid time_end %q: %w", raw, err)
		}
		end = t
	}
	return start, end, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}
