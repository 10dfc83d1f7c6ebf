// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

// Package simulation embeds the deterministic fixture datasets backing the
// tool handlers: logs, metrics, deployment history, and the service
// dependency graph.
package simulation

import (
	"embed"
	"time"

	"gopkg.in/yaml.v3"

	senterr "github.com/ojasavaparas/Sentinel/pkg/errors"
)

//go:embed data/*.yaml
var dataFS embed.FS

// LogEntry is one simulated log line.
type LogEntry struct {
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	Service   string    `yaml:"service" json:"service"`
	Level     string    `yaml:"level" json:"level"`
	Message   string    `yaml:"message" json:"message"`
}

// MetricPoint is one simulated metric sample.
type MetricPoint struct {
	Timestamp  time.Time `yaml:"timestamp" json:"timestamp"`
	Service    string    `yaml:"service" json:"service"`
	MetricName string    `yaml:"metric_name" json:"metric_name"`
	Value      float64   `yaml:"value" json:"value"`
	Unit       string    `yaml:"unit" json:"unit"`
}

// Deployment is one simulated deploy record.
type Deployment struct {
	Timestamp     time.Time `yaml:"timestamp" json:"timestamp"`
	Service       string    `yaml:"service" json:"service"`
	CommitHash    string    `yaml:"commit_hash" json:"commit_hash"`
	CommitMessage string    `yaml:"commit_message" json:"commit_message"`
}

// Dependency is one edge of the service dependency graph.
type Dependency struct {
	Name         string `yaml:"name" json:"name"`
	Type         string `yaml:"type" json:"type"`
	HealthStatus string `yaml:"health_status" json:"health_status"`
}

// Dataset holds all fixture data, loaded once at startup.
type Dataset struct {
	Logs         []LogEntry
	Metrics      []MetricPoint
	Deployments  []Deployment
	Dependencies map[string][]Dependency
}

// Load parses the embedded fixture files into a Dataset.
func Load() (*Dataset, error) {
	ds := &Dataset{}

	if err := loadYAML("data/logs.yaml", &ds.Logs); err != nil {
		return nil, err
	}
	if err := loadYAML("data/metrics.yaml", &ds.Metrics); err != nil {
		return nil, err
	}
	if err := loadYAML("data/deployments.yaml", &ds.Deployments); err != nil {
		return nil, err
	}
	if err := loadYAML("data/dependencies.yaml", &ds.Dependencies); err != nil {
		return nil, err
	}

	return ds, nil
}

func loadYAML(path string, out any) error {
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return senterr.Wrapf(err, senterr.CodeCLISetupFailure, "reading embedded fixture %s", path)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return senterr.Wrapf(err, senterr.CodeCLISetupFailure, "parsing embedded fixture %s", path)
	}
	return nil
}
