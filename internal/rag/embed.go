// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

// Package rag implements runbook retrieval: markdown chunking, embedding,
// and nearest-neighbor search over a sqlite-vec index.
package rag

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// EmbeddingDimensions is the width of all stored vectors.
const EmbeddingDimensions = 256

// Embedder turns text into fixed-width vectors. Implementations must be
// deterministic: the same text always yields the same vector.
type Embedder interface {
	Embed(texts []string) ([][]float32, error)
}

// HashingEmbedder is a deterministic bag-of-words feature-hashing embedder.
// It needs no model weights and no network, which keeps ingestion and search
// fully reproducible; relevance comes from term overlap between query and
// chunk, which is sufficient for runbook retrieval over a small corpus.
type HashingEmbedder struct {
	dimensions int
}

// NewHashingEmbedder creates an embedder producing EmbeddingDimensions-wide
// vectors.
func NewHashingEmbedder() *HashingEmbedder {
	return &HashingEmbedder{dimensions: EmbeddingDimensions}
}

// Embed generates one L2-normalized vector per input text.
func (e *HashingEmbedder) Embed(texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.embedOne(text)
	}
	return out, nil
}

func (e *HashingEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dimensions)

	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		idx := int(h.Sum32()) % e.dimensions
		if idx < 0 {
			idx += e.dimensions
		}
		vec[idx]++
	}

	// L2-normalize so vec0 distance behaves like cosine distance.
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
