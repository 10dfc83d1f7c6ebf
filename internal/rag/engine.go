// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package rag

import (
	"context"
	"log/slog"
	"math"
)

// Confidence buckets a similarity score for downstream consumers.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ClassifyConfidence maps a similarity score to its bucket:
// >0.7 high, 0.4–0.7 medium, <0.4 low.
func ClassifyConfidence(score float64) Confidence {
	switch {
	case score > 0.7:
		return ConfidenceHigh
	case score >= 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Result is a single runbook search hit.
type Result struct {
	Content         string     `json:"content"`
	SourceFile      string     `json:"source_file"`
	Title           string     `json:"title"`
	SimilarityScore float64    `json:"similarity_score"`
	ChunkIndex      int        `json:"chunk_index"`
	Confidence      Confidence `json:"confidence"`
}

// Engine is the search side of runbook retrieval.
type Engine struct {
	index    *Index
	embedder Embedder
}

// NewEngine creates a search engine over the given index.
func NewEngine(index *Index, embedder Embedder) *Engine {
	return &Engine{index: index, embedder: embedder}
}

// Search returns up to topK runbook chunks relevant to the query, most
// similar first. An empty index yields an empty result, not an error.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	count, err := e.index.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		slog.Warn("runbook search against empty index", "query", query)
		return []Result{}, nil
	}

	if topK > count {
		topK = count
	}

	embeddings, err := e.embedder.Embed([]string{query})
	if err != nil {
		return nil, err
	}

	hits, err := e.index.Search(ctx, embeddings[0], topK)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		score := similarityFromDistance(hit.Distance)

		r := Result{
			SimilarityScore: score,
			Confidence:      ClassifyConfidence(score),
		}
		if s, ok := hit.Metadata["content"].(string); ok {
			r.Content = s
		}
		if s, ok := hit.Metadata["source_file"].(string); ok {
			r.SourceFile = s
		}
		if s, ok := hit.Metadata["title"].(string); ok {
			r.Title = s
		}
		if f, ok := hit.Metadata["chunk_index"].(float64); ok {
			r.ChunkIndex = int(f)
		}
		results = append(results, r)
	}

	topScore := 0.0
	if len(results) > 0 {
		topScore = results[0].SimilarityScore
	}
	slog.Info("runbook search",
		"query", query,
		"num_results", len(results),
		"top_score", topScore,
	)

	return results, nil
}

// similarityFromDistance converts the index's L2 distance over unit vectors
// into cosine similarity: d^2 = 2 - 2*cos, so cos = 1 - d^2/2. The result is
// clamped to [0, 1] and rounded to 4 decimals.
func similarityFromDistance(distance float64) float64 {
	sim := 1.0 - (distance*distance)/2.0
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return math.Round(sim*10000) / 10000
}
