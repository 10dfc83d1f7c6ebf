// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashingEmbedderDeterministic(t *testing.T) {
	embedder := NewHashingEmbedder()

	a, err := embedder.Embed([]string{"connection pool exhausted"})
	require.NoError(t, err)
	b, err := embedder.Embed([]string{"connection pool exhausted"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a[0], EmbeddingDimensions)
}

func TestHashingEmbedderNormalized(t *testing.T) {
	embedder := NewHashingEmbedder()
	vecs, err := embedder.Embed([]string{"rollback the deployment and watch latency"})
	require.NoError(t, err)

	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestHashingEmbedderEmptyText(t *testing.T) {
	embedder := NewHashingEmbedder()
	vecs, err := embedder.Embed([]string{""})
	require.NoError(t, err)
	for _, v := range vecs[0] {
		assert.Zero(t, v)
	}
}

func TestSimilarityFromDistance(t *testing.T) {
	// Identical unit vectors have distance 0.
	assert.Equal(t, 1.0, similarityFromDistance(0))
	// Orthogonal unit vectors have distance sqrt(2).
	assert.InDelta(t, 0.0, similarityFromDistance(1.4142), 0.001)
	// Out-of-range values clamp instead of going negative.
	assert.Equal(t, 0.0, similarityFromDistance(3.0))
}

func TestClassifyConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ClassifyConfidence(0.71))
	assert.Equal(t, ConfidenceMedium, ClassifyConfidence(0.7))
	assert.Equal(t, ConfidenceMedium, ClassifyConfidence(0.4))
	assert.Equal(t, ConfidenceLow, ClassifyConfidence(0.39))
}

func TestChunkTextOverlaps(t *testing.T) {
	text := ""
	for i := 0; i < 130; i++ {
		text += "abcdefghij"
	}

	chunks := chunkText(text, 512, 50)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 512)
	}
	// Consecutive chunks share the overlap region.
	tail := chunks[0][len(chunks[0])-50:]
	assert.Equal(t, tail, chunks[1][:50])
}

func TestChunkTextShortInput(t *testing.T) {
	chunks := chunkText("short runbook", 512, 50)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short runbook", chunks[0])
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Deployment Rollback Procedure", extractTitle("# Deployment Rollback Procedure\n\nbody"))
	assert.Equal(t, "Untitled", extractTitle("no heading here\n## subheading only"))
}

func writeRunbook(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := OpenIndex(filepath.Join(t.TempDir(), "runbooks.db"), EmbeddingDimensions)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func TestIngestAndSearchRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeRunbook(t, dir, "pool.md", "# Connection Pool Exhaustion\n\nWiden the connection pool and roll back recent configuration deployments.")
	writeRunbook(t, dir, "cache.md", "# Cache Invalidation\n\nFlush the redis cache and warm it from the read replica.")

	index := newTestIndex(t)
	embedder := NewHashingEmbedder()

	stored, err := NewIngester(index, embedder).IngestDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	engine := NewEngine(index, embedder)
	results, err := engine.Search(context.Background(), "connection pool exhausted", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Connection Pool Exhaustion", results[0].Title)
	assert.Equal(t, "pool.md", results[0].SourceFile)
	assert.Greater(t, results[0].SimilarityScore, results[1].SimilarityScore)
	assert.Contains(t, results[0].Content, "connection pool")
}

func TestSearchEmptyIndexReturnsEmpty(t *testing.T) {
	index := newTestIndex(t)
	engine := NewEngine(index, NewHashingEmbedder())

	results, err := engine.Search(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchTopKCappedAtCorpusSize(t *testing.T) {
	dir := t.TempDir()
	writeRunbook(t, dir, "only.md", "# Only Runbook\n\nRestart the service.")

	index := newTestIndex(t)
	embedder := NewHashingEmbedder()
	_, err := NewIngester(index, embedder).IngestDir(context.Background(), dir)
	require.NoError(t, err)

	results, err := NewEngine(index, embedder).Search(context.Background(), "restart", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestIngestDirNoMarkdown(t *testing.T) {
	index := newTestIndex(t)
	_, err := NewIngester(index, NewHashingEmbedder()).IngestDir(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestIngestReplacesPriorCorpus(t *testing.T) {
	dir := t.TempDir()
	writeRunbook(t, dir, "a.md", "# A\n\nfirst corpus")

	index := newTestIndex(t)
	embedder := NewHashingEmbedder()
	ingester := NewIngester(index, embedder)

	_, err := ingester.IngestDir(context.Background(), dir)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "a.md")))
	writeRunbook(t, dir, "b.md", "# B\n\nsecond corpus")

	_, err = ingester.IngestDir(context.Background(), dir)
	require.NoError(t, err)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := NewEngine(index, embedder).Search(context.Background(), "second corpus", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b.md", results[0].SourceFile)
}
