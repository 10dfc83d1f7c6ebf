// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ojasavaparas/Sentinel/internal/config"
	"github.com/ojasavaparas/Sentinel/internal/llm"
	"github.com/ojasavaparas/Sentinel/internal/monitoring"
	"github.com/ojasavaparas/Sentinel/internal/orchestrator"
	"github.com/ojasavaparas/Sentinel/internal/rag"
	"github.com/ojasavaparas/Sentinel/internal/server"
	"github.com/ojasavaparas/Sentinel/internal/simulation"
	"github.com/ojasavaparas/Sentinel/internal/tools"
	"github.com/ojasavaparas/Sentinel/internal/trace"
	sentinelerr "github.com/ojasavaparas/Sentinel/pkg/errors"
)

// app is the wired object graph shared by the serve and analyze commands.
type app struct {
	orchestrator *orchestrator.Orchestrator
	store        *server.IncidentStore
	runbooks     *rag.Engine
	index        *rag.Index
	metrics      *monitoring.Metrics
	costs        *monitoring.CostTracker
	registry     *prometheus.Registry
}

func (a *app) Close() {
	if a.index != nil {
		_ = a.index.Close()
	}
}

// buildApp wires the full pipeline from configuration. The runbook index is
// populated from the configured directory when empty.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	dataset, err := simulation.Load()
	if err != nil {
		return nil, err
	}

	toolRegistry := tools.NewRegistry()
	toolRegistry.RegisterSimulated(dataset)

	index, err := rag.OpenIndex(cfg.Runbooks.DBPath, rag.EmbeddingDimensions)
	if err != nil {
		return nil, err
	}

	embedder := rag.NewHashingEmbedder()
	engine := rag.NewEngine(index, embedder)
	toolRegistry.RegisterRunbookSearch(engine)

	if err := ensureRunbooks(ctx, cfg, index, embedder); err != nil {
		_ = index.Close()
		return nil, err
	}

	client, err := newLLMClient(cfg)
	if err != nil {
		_ = index.Close()
		return nil, err
	}

	promRegistry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(promRegistry)
	toolRegistry.SetObserver(metrics.ObserveTool)

	tracer := trace.NewTracer(nil)
	messages := trace.NewMessageLog()

	orch := orchestrator.New(client, toolRegistry, tracer, messages,
		orchestrator.WithTimeout(time.Duration(cfg.Agents.AnalysisTimeoutSeconds)*time.Second),
		orchestrator.WithPricing(llm.Pricing{
			InputPerMTok:  cfg.LLM.InputPerMTokUSD,
			OutputPerMTok: cfg.LLM.OutputPerMTok,
		}),
	)

	store := server.NewIncidentStore()
	for _, report := range simulation.SeedReports() {
		store.Save(report)
	}

	return &app{
		orchestrator: orch,
		store:        store,
		runbooks:     engine,
		index:        index,
		metrics:      metrics,
		costs:        monitoring.NewCostTracker(),
		registry:     promRegistry,
	}, nil
}

func newLLMClient(cfg *config.Config) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "anthropic":
		return llm.NewAnthropicClient(llm.AnthropicConfig{
			APIKey:    cfg.LLM.APIKey,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
		})
	case "openai":
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:    cfg.LLM.APIKey,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
		})
	case "scripted":
		// Offline demo mode. Every stage gets the exhausted fallback
		// response, so reports come back degraded but the pipeline,
		// trace, and API are fully exercised without an API key.
		return llm.NewScriptedClient(), nil
	default:
		return nil, sentinelerr.Errorf(sentinelerr.CodeLLMProviderUnknown, "unknown llm provider %q", cfg.LLM.Provider)
	}
}

// ensureRunbooks populates an empty index from the configured runbook
// directory. A missing directory is not fatal; runbook search returns no
// results until sentinel ingest is run.
func ensureRunbooks(ctx context.Context, cfg *config.Config, index *rag.Index, embedder rag.Embedder) error {
	count, err := index.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := os.Stat(cfg.Runbooks.Dir); err != nil {
		slog.Warn("runbook directory not found, search will be empty", "dir", cfg.Runbooks.Dir)
		return nil
	}

	chunks, err := rag.NewIngester(index, embedder).IngestDir(ctx, cfg.Runbooks.Dir)
	if err != nil {
		return err
	}
	slog.Info("runbooks indexed", "dir", cfg.Runbooks.Dir, "chunks", chunks)
	return nil
}
