// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ojasavaparas/Sentinel/internal/llm"
	"github.com/ojasavaparas/Sentinel/internal/rag"
)

const defaultRunbookTopK = 3

// RunbookSearcher is the retrieval engine behind the search_runbooks tool.
type RunbookSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]rag.Result, error)
}

// RegisterRunbookSearch wires the semantic runbook search tool.
func (r *Registry) RegisterRunbookSearch(engine RunbookSearcher) {
	r.register(llm.ToolSchema{
		Name:        "search_runbooks",
		Description: "Semantic search over operational runbooks for known remediation procedures. Returns the most relevant excerpts with confidence ratings.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Natural-language description of the problem to look up"},
			},
			"required": []any{"query"},
		},
	}, 0, func(ctx context.Context, args map[string]any) (any, error) {
		query := stringArg(args, "query")
		if query == "" {
			return nil, fmt.Errorf("search_runbooks: query is required")
		}

		results, err := engine.Search(ctx, query, defaultRunbookTopK)
		if err != nil {
			return nil, err
		}

		for _, res := range results {
			slog.Debug("runbook hit",
				"source", res.SourceFile,
				"score", res.SimilarityScore,
				"confidence", string(res.Confidence),
			)
		}

		return map[string]any{
			"results":     results,
			"num_results": len(results),
		}, nil
	})
}
