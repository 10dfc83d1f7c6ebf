// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

// Package agent implements the bounded request/act/observe loop shared by
// the triage, research, and remediation stages, and the stage runners that
// configure it.
package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("```(?:json)?\\s*")

// ExtractJSON pulls a JSON object out of free-text model output. It tries, in
// order: a direct parse, a parse after stripping markdown code fences, and a
// parse of the substring between the first '{' and the last '}'. The second
// return is false when no object could be recovered; callers substitute a
// stage-specific default in that case.
func ExtractJSON(text string) (map[string]any, bool) {
	stripped := strings.TrimRight(strings.TrimSpace(fenceRe.ReplaceAllString(text, "")), "`")

	var out map[string]any
	if err := json.Unmarshal([]byte(stripped), &out); err == nil {
		return out, true
	}

	start := strings.Index(stripped, "{")
	end := strings.LastIndex(stripped, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(stripped[start:end+1]), &out); err == nil {
			return out, true
		}
	}

	return nil, false
}

// stringField reads a string value from a parsed object.
func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// floatField reads a numeric value from a parsed object.
func floatField(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// stringsField reads a list of strings from a parsed object, skipping
// non-string elements.
func stringsField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// boolField reads an optional boolean; the second return reports presence.
func boolField(m map[string]any, key string) (bool, bool) {
	v, ok := m[key].(bool)
	return v, ok
}
