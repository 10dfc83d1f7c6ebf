// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ojasavaparas/Sentinel/internal/rag"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Rebuild the runbook search index",
		Long:  "Read every markdown runbook from the configured directory, chunk and embed it, and replace the vector index contents.",
		RunE:  runIngest,
	}

	cmd.Flags().String("dir", "", "override runbook directory")

	return cmd
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Runbooks.Dir = dir
	}

	index, err := rag.OpenIndex(cfg.Runbooks.DBPath, rag.EmbeddingDimensions)
	if err != nil {
		return err
	}
	defer func() { _ = index.Close() }()

	chunks, err := rag.NewIngester(index, rag.NewHashingEmbedder()).IngestDir(cmd.Context(), cfg.Runbooks.Dir)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks from %s into %s\n", chunks, cfg.Runbooks.Dir, cfg.Runbooks.DBPath)
	return err
}
