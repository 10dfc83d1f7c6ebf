// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package llm

// Pricing holds per-million-token rates in USD.
type Pricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// DefaultPricing matches Claude Sonnet rates: $3/MTok input, $15/MTok output.
var DefaultPricing = Pricing{InputPerMTok: 3.0, OutputPerMTok: 15.0}

// Cost returns the USD cost of the given usage at these rates.
func (p Pricing) Cost(u Usage) float64 {
	return (float64(u.InputTokens)*p.InputPerMTok + float64(u.OutputTokens)*p.OutputPerMTok) / 1_000_000
}
