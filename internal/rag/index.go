// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package rag

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	senterr "github.com/ojasavaparas/Sentinel/pkg/errors"
)

func init() {
	sqlite_vec.Auto()
}

// indexResult is one raw nearest-neighbor hit before scoring.
type indexResult struct {
	ID       string
	Distance float64
	Metadata map[string]any
}

// Index stores chunk embeddings in a SQLite database using the vec0 virtual
// table, with a companion metadata table keyed by chunk id.
type Index struct {
	db         *sql.DB
	dimensions int
}

// OpenIndex opens (or creates) the runbook index at dbPath.
func OpenIndex(dbPath string, dimensions int) (*Index, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "opening sqlite db %s", dbPath)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "pinging sqlite db %s", dbPath)
	}

	if err := migrate(db, dimensions); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Index{db: db, dimensions: dimensions}, nil
}

func migrate(db *sql.DB, dimensions int) error {
	vecDDL := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS chunks USING vec0(id TEXT PRIMARY KEY, embedding float[%d])`,
		dimensions,
	)
	if _, err := db.Exec(vecDDL); err != nil {
		return senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "creating chunks virtual table")
	}

	const metaDDL = `
CREATE TABLE IF NOT EXISTS chunk_metadata (
	id       TEXT PRIMARY KEY,
	metadata TEXT NOT NULL DEFAULT '{}'
)`
	if _, err := db.Exec(metaDDL); err != nil {
		return senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "creating chunk_metadata table")
	}

	return nil
}

// Store inserts or replaces a chunk embedding and its metadata.
func (ix *Index) Store(ctx context.Context, id string, embedding []float32, metadata map[string]any) error {
	blob, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "serializing embedding %s", id)
	}

	metaJSON := []byte("{}")
	if len(metadata) > 0 {
		metaJSON, err = json.Marshal(metadata)
		if err != nil {
			return senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "marshalling metadata %s", id)
		}
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	// vec0 does not support ON CONFLICT; delete first for upsert.
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE id = ?`, id); err != nil {
		return senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "deleting existing chunk %s", id)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO chunks(id, embedding) VALUES (?, ?)`, id, blob); err != nil {
		return senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "inserting chunk %s", id)
	}

	const metaQ = `INSERT INTO chunk_metadata(id, metadata) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET metadata = excluded.metadata`
	if _, err := tx.ExecContext(ctx, metaQ, id, string(metaJSON)); err != nil {
		return senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "upserting chunk metadata %s", id)
	}

	if err := tx.Commit(); err != nil {
		return senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "committing chunk store")
	}
	return nil
}

// Search performs a k-nearest-neighbor query. Distance is vec0's L2 distance
// over normalized vectors; lower means more similar.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]indexResult, error) {
	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, senterr.Wrapf(err, senterr.CodeRunbookSearchFailure, "serializing query vector")
	}

	const q = `SELECT c.id, c.distance, COALESCE(m.metadata, '{}')
FROM chunks c
LEFT JOIN chunk_metadata m ON m.id = c.id
WHERE c.embedding MATCH ? AND k = ?
ORDER BY c.distance`

	rows, err := ix.db.QueryContext(ctx, q, blob, k)
	if err != nil {
		return nil, senterr.Wrapf(err, senterr.CodeRunbookSearchFailure, "searching chunks")
	}
	defer func() { _ = rows.Close() }()

	var results []indexResult
	for rows.Next() {
		var r indexResult
		var metaStr string

		if err := rows.Scan(&r.ID, &r.Distance, &metaStr); err != nil {
			return nil, senterr.Wrapf(err, senterr.CodeRunbookSearchFailure, "scanning chunk result")
		}

		if metaStr != "" && metaStr != "{}" {
			if err := json.Unmarshal([]byte(metaStr), &r.Metadata); err != nil {
				return nil, senterr.Wrapf(err, senterr.CodeRunbookSearchFailure, "unmarshalling chunk metadata %s", r.ID)
			}
		}

		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, senterr.Wrapf(err, senterr.CodeRunbookSearchFailure, "iterating chunk results")
	}

	return results, nil
}

// Count returns the number of stored chunks.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunk_metadata`).Scan(&n); err != nil {
		return 0, senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "counting chunks")
	}
	return n, nil
}

// Clear removes all chunks, letting a fresh ingest replace the corpus.
func (ix *Index) Clear(ctx context.Context) error {
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "clearing chunks")
	}
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM chunk_metadata`); err != nil {
		return senterr.Wrapf(err, senterr.CodeRunbookIndexFailure, "clearing chunk metadata")
	}
	return nil
}

// Close closes the underlying database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}
