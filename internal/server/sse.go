// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ojasavaparas/Sentinel/internal/incident"
)

func (s *Server) registerStreamRoute() {
	s.router.Post("/api/v1/analyze/stream", s.handleAnalyzeStream)

	// Register the operation in the OpenAPI spec manually. The SSE handler
	// needs raw http.ResponseWriter access, so it cannot use huma's standard
	// handler signature. The chi route above does the actual work; this
	// entry only documents it.
	minLen := 1
	s.api.OpenAPI().AddOperation(&huma.Operation{
		OperationID: "analyze-incident-stream",
		Method:      http.MethodPost,
		Path:        "/api/v1/analyze/stream",
		Summary:     "Analyze an alert with streaming progress",
		Description: "Run the analysis pipeline and receive progress events. Set Accept: text/event-stream for SSE, otherwise receives a JSON array of events.",
		Tags:        []string{"incidents"},
		RequestBody: &huma.RequestBody{
			Required: true,
			Content: map[string]*huma.MediaType{
				"application/json": {
					Schema: &huma.Schema{
						Type:     "object",
						Required: []string{"service", "description"},
						Properties: map[string]*huma.Schema{
							"service":     {Type: "string", MinLength: &minLen, Description: "Affected service name"},
							"severity":    {Type: "string", Description: "Alert severity, defaults to high"},
							"description": {Type: "string", MinLength: &minLen, Description: "What the alert observed"},
							"timestamp":   {Type: "string", Format: "date-time", Description: "When the alert fired"},
							"metadata":    {Type: "object", Description: "Arbitrary alert labels"},
						},
					},
				},
			},
		},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Streaming response (SSE or JSON depending on Accept header)",
				Content: map[string]*huma.MediaType{
					"text/event-stream": {
						Schema: &huma.Schema{Type: "string", Description: "Server-sent event stream"},
					},
					"application/json": {
						Schema: &huma.Schema{
							Type: "object",
							Properties: map[string]*huma.Schema{
								"events": {
									Type:        "array",
									Description: "Collected events as JSON objects",
									Items:       &huma.Schema{Type: "object"},
								},
							},
						},
					},
				},
			},
			"422": {Description: "Validation error"},
		},
	})
}

func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	var body AlertBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if body.Service == "" || body.Description == "" {
		http.Error(w, `{"error":"service and description are required"}`, http.StatusUnprocessableEntity)
		return
	}

	alert, err := alertFromBody(body)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusUnprocessableEntity)
		return
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.AnalysisStarted()
	}

	// The handler drains the channel even after a client disconnect, so the
	// pipeline must not be cancelled with the request. The analysis still
	// completes and the report is stored.
	events := s.deps.Orchestrator.AnalyzeStream(context.WithoutCancel(r.Context()), alert)

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		s.writeSSE(w, events)
		return
	}
	s.writeCollectedJSON(w, events)
}

func (s *Server) writeSSE(w http.ResponseWriter, events <-chan incident.StreamEvent) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)

	for ev := range events {
		s.finishEvent(ev)
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
			// Client went away. Keep draining so the pipeline finishes
			// and the report is stored.
			for rest := range events {
				s.finishEvent(rest)
			}
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *Server) writeCollectedJSON(w http.ResponseWriter, events <-chan incident.StreamEvent) {
	var collected []json.RawMessage
	for ev := range events {
		s.finishEvent(ev)
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		collected = append(collected, data)
	}

	w.Header().Set("Content-Type", "application/json")
	resp := struct {
		Events []json.RawMessage `json:"events"`
	}{Events: collected}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"error":"encoding response"}`, http.StatusInternalServerError)
	}
}

// finishEvent handles the terminal analysis_complete event: the report it
// carries is stored and folded into metrics regardless of whether the
// client is still connected.
func (s *Server) finishEvent(ev incident.StreamEvent) {
	if ev.Type != incident.EventAnalysisComplete {
		return
	}
	report, ok := ev.Data["report"].(*incident.IncidentReport)
	if !ok {
		return
	}
	s.deps.Store.Save(report)
	if s.deps.Metrics != nil {
		s.deps.Metrics.AnalysisFinished(report)
	}
	if s.deps.Costs != nil {
		s.deps.Costs.Record(report)
	}
}
