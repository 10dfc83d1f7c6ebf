// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package server

import (
	"sync"

	"github.com/ojasavaparas/Sentinel/internal/incident"
	sentinelerr "github.com/ojasavaparas/Sentinel/pkg/errors"
)

// IncidentStore keeps analyzed incidents in memory, newest first. History
// does not survive a restart.
type IncidentStore struct {
	mu      sync.RWMutex
	reports map[string]*incident.IncidentReport
	order   []string
}

// NewIncidentStore returns an empty store.
func NewIncidentStore() *IncidentStore {
	return &IncidentStore{reports: make(map[string]*incident.IncidentReport)}
}

// Save records a report under its incident id. Saving the same id twice
// replaces the report but keeps its position.
func (s *IncidentStore) Save(report *incident.IncidentReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.IncidentID]; !exists {
		s.order = append([]string{report.IncidentID}, s.order...)
	}
	s.reports[report.IncidentID] = report
}

// Get returns the report for an incident id.
func (s *IncidentStore) Get(id string) (*incident.IncidentReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, sentinelerr.Errorf(sentinelerr.CodeStoreIncidentNotFound, "incident %q not found", id)
	}
	return report, nil
}

// List returns all reports, newest first.
func (s *IncidentStore) List() []*incident.IncidentReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*incident.IncidentReport, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.reports[id])
	}
	return out
}

// Len reports the number of stored incidents.
func (s *IncidentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
