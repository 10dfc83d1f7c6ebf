// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package incident

import (
	"fmt"
	"time"
)

// Severity classifies how urgent an inbound alert is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// ParseSeverity validates a severity string from an external caller.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return Severity(s), nil
	default:
		return "", fmt.Errorf("unknown severity %q (want critical, high, medium, or low)", s)
	}
}

// Alert is the inbound signal describing a suspected incident. It is created
// by the caller and consumed read-only by the pipeline.
type Alert struct {
	Service     string         `json:"service"`
	Description string         `json:"description"`
	Severity    Severity       `json:"severity"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}
