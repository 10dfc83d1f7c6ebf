// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	senterr "github.com/ojasavaparas/Sentinel/pkg/errors"
)

const (
	chunkSize    = 512
	chunkOverlap = 50
)

// Ingester reads runbook markdown, chunks it, embeds the chunks, and stores
// them in the index.
type Ingester struct {
	index    *Index
	embedder Embedder
}

// NewIngester creates an Ingester writing to the given index.
func NewIngester(index *Index, embedder Embedder) *Ingester {
	return &Ingester{index: index, embedder: embedder}
}

// IngestDir re-populates the index from every *.md file in dir. The existing
// corpus is cleared first so repeated ingests stay consistent with the files
// on disk. Returns the number of stored chunks.
func (ing *Ingester) IngestDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, senterr.Wrapf(err, senterr.CodeRunbookIngestInvalid, "reading runbook directory %s", dir)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return 0, senterr.Errorf(senterr.CodeRunbookIngestInvalid, "no markdown files found in %s", dir)
	}

	if err := ing.index.Clear(ctx); err != nil {
		return 0, err
	}

	stored := 0
	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return stored, senterr.Wrapf(err, senterr.CodeRunbookIngestInvalid, "reading runbook %s", name)
		}

		title := extractTitle(string(content))
		chunks := chunkText(string(content), chunkSize, chunkOverlap)

		embeddings, err := ing.embedder.Embed(chunks)
		if err != nil {
			return stored, senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "embedding chunks of %s", name)
		}

		stem := strings.TrimSuffix(name, ".md")
		for i, chunk := range chunks {
			id := fmt.Sprintf("%s__chunk_%d", stem, i)
			meta := map[string]any{
				"source_file": name,
				"title":       title,
				"chunk_index": i,
				"content":     chunk,
			}
			if err := ing.index.Store(ctx, id, embeddings[i], meta); err != nil {
				return stored, err
			}
			stored++
		}
	}

	slog.Info("runbooks ingested", "files", len(files), "chunks", stored, "dir", dir)
	return stored, nil
}

// extractTitle returns the first markdown H1, or "Untitled".
func extractTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return "Untitled"
}

// chunkText splits text into overlapping chunks of approximately size chars.
func chunkText(text string, size, overlap int) []string {
	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(text) {
			break
		}
		start = end - overlap
	}
	return chunks
}
