// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ojasavaparas/Sentinel/internal/incident"
	"github.com/ojasavaparas/Sentinel/internal/monitoring"
	"github.com/ojasavaparas/Sentinel/internal/rag"
)

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "analyze-incident",
		Method:      http.MethodPost,
		Path:        "/api/v1/analyze",
		Summary:     "Analyze an alert",
		Description: "Run the full triage, research, and remediation pipeline and return the incident report.",
		Tags:        []string{"incidents"},
	}, s.handleAnalyze)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-incidents",
		Method:      http.MethodGet,
		Path:        "/api/v1/incidents",
		Summary:     "List analyzed incidents",
		Tags:        []string{"incidents"},
	}, s.handleListIncidents)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-incident",
		Method:      http.MethodGet,
		Path:        "/api/v1/incidents/{id}",
		Summary:     "Get a full incident report",
		Tags:        []string{"incidents"},
	}, s.handleGetIncident)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-incident-trace",
		Method:      http.MethodGet,
		Path:        "/api/v1/incidents/{id}/trace",
		Summary:     "Get the agent decision trace for an incident",
		Tags:        []string{"incidents"},
	}, s.handleGetTrace)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-incident-messages",
		Method:      http.MethodGet,
		Path:        "/api/v1/incidents/{id}/messages",
		Summary:     "Get the inter-agent messages for an incident",
		Tags:        []string{"incidents"},
	}, s.handleGetMessages)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-runbooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/runbooks/search",
		Summary:     "Search the runbook knowledge base",
		Tags:        []string{"runbooks"},
	}, s.handleSearchRunbooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-costs",
		Method:      http.MethodGet,
		Path:        "/api/v1/costs",
		Summary:     "Accumulated analysis spend",
		Tags:        []string{"system"},
	}, s.handleGetCosts)
}

// --- Request/Response types for huma ---

// AlertBody is the JSON shape of an incoming alert.
type AlertBody struct {
	Service     string         `json:"service" minLength:"1" doc:"Affected service name"`
	Severity    string         `json:"severity,omitempty" enum:"critical,high,medium,low" doc:"Alert severity, defaults to high"`
	Description string         `json:"description" minLength:"1" doc:"What the alert observed"`
	Timestamp   *time.Time     `json:"timestamp,omitempty" doc:"When the alert fired, defaults to now"`
	Metadata    map[string]any `json:"metadata,omitempty" doc:"Arbitrary alert labels"`
}

type analyzeInput struct {
	Body AlertBody
}
type analyzeOutput struct {
	Body incident.IncidentReport
}

// IncidentSummary is the list-view projection of a report.
type IncidentSummary struct {
	IncidentID            string  `json:"incident_id"`
	Service               string  `json:"service"`
	Severity              string  `json:"severity"`
	RootCause             string  `json:"root_cause"`
	ConfidenceScore       float64 `json:"confidence_score"`
	RequiresHumanApproval bool    `json:"requires_human_approval"`
}

type listIncidentsOutput struct {
	Body struct {
		Incidents []IncidentSummary `json:"incidents"`
		Total     int               `json:"total"`
	}
}

type incidentIDInput struct {
	ID string `path:"id"`
}
type getIncidentOutput struct {
	Body incident.IncidentReport
}

type getTraceOutput struct {
	Body struct {
		IncidentID string               `json:"incident_id"`
		Steps      []incident.AgentStep `json:"steps"`
	}
}

type getMessagesOutput struct {
	Body struct {
		IncidentID string                  `json:"incident_id"`
		Messages   []incident.AgentMessage `json:"messages"`
	}
}

type searchRunbooksInput struct {
	Query string `query:"query" minLength:"1" doc:"Search query"`
	TopK  int    `query:"top_k" default:"3" minimum:"1" maximum:"10" doc:"Number of results"`
}
type searchRunbooksOutput struct {
	Body struct {
		Results []rag.Result `json:"results"`
		Total   int          `json:"num_results"`
	}
}

type getCostsOutput struct {
	Body monitoring.CostSummary
}

// --- Handlers ---

func (s *Server) handleAnalyze(ctx context.Context, input *analyzeInput) (*analyzeOutput, error) {
	alert, err := alertFromBody(input.Body)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.AnalysisStarted()
	}
	report := s.deps.Orchestrator.Analyze(ctx, alert)
	if s.deps.Metrics != nil {
		s.deps.Metrics.AnalysisFinished(report)
	}
	if s.deps.Costs != nil {
		s.deps.Costs.Record(report)
	}
	s.deps.Store.Save(report)

	return &analyzeOutput{Body: *report}, nil
}

func (s *Server) handleListIncidents(_ context.Context, _ *struct{}) (*listIncidentsOutput, error) {
	reports := s.deps.Store.List()

	out := &listIncidentsOutput{}
	out.Body.Incidents = make([]IncidentSummary, 0, len(reports))
	for _, r := range reports {
		out.Body.Incidents = append(out.Body.Incidents, IncidentSummary{
			IncidentID:            r.IncidentID,
			Service:               r.Alert.Service,
			Severity:              string(r.Alert.Severity),
			RootCause:             r.RootCause,
			ConfidenceScore:       r.ConfidenceScore,
			RequiresHumanApproval: r.RequiresHumanApproval,
		})
	}
	out.Body.Total = len(out.Body.Incidents)
	return out, nil
}

func (s *Server) handleGetIncident(_ context.Context, input *incidentIDInput) (*getIncidentOutput, error) {
	report, err := s.deps.Store.Get(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("incident %q not found", input.ID))
	}
	return &getIncidentOutput{Body: *report}, nil
}

func (s *Server) handleGetTrace(_ context.Context, input *incidentIDInput) (*getTraceOutput, error) {
	report, err := s.deps.Store.Get(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("incident %q not found", input.ID))
	}
	out := &getTraceOutput{}
	out.Body.IncidentID = input.ID
	out.Body.Steps = report.AgentTrace
	return out, nil
}

func (s *Server) handleGetMessages(_ context.Context, input *incidentIDInput) (*getMessagesOutput, error) {
	if _, err := s.deps.Store.Get(input.ID); err != nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("incident %q not found", input.ID))
	}
	out := &getMessagesOutput{}
	out.Body.IncidentID = input.ID
	out.Body.Messages = s.deps.Orchestrator.Messages().MessagesFor(input.ID)
	return out, nil
}

func (s *Server) handleSearchRunbooks(ctx context.Context, input *searchRunbooksInput) (*searchRunbooksOutput, error) {
	if s.deps.Runbooks == nil {
		return nil, huma.Error503ServiceUnavailable("runbook index not configured")
	}

	results, err := s.deps.Runbooks.Search(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, huma.Error500InternalServerError("searching runbooks", err)
	}

	out := &searchRunbooksOutput{}
	out.Body.Results = results
	out.Body.Total = len(results)
	return out, nil
}

func (s *Server) handleGetCosts(_ context.Context, _ *struct{}) (*getCostsOutput, error) {
	if s.deps.Costs == nil {
		return nil, huma.Error503ServiceUnavailable("cost tracking not configured")
	}
	return &getCostsOutput{Body: s.deps.Costs.Summary()}, nil
}

func alertFromBody(body AlertBody) (incident.Alert, error) {
	severity := incident.SeverityHigh
	if body.Severity != "" {
		parsed, err := incident.ParseSeverity(body.Severity)
		if err != nil {
			return incident.Alert{}, err
		}
		severity = parsed
	}

	timestamp := time.Now().UTC()
	if body.Timestamp != nil {
		timestamp = body.Timestamp.UTC()
	}

	return incident.Alert{
		Service:     body.Service,
		Description: body.Description,
		Severity:    severity,
		Timestamp:   timestamp,
		Metadata:    body.Metadata,
	}, nil
}
