// ABOUTME: Knowledge index with SQLite persistence and cosine similarity search
// ABOUTME: Stores embedded chunks of hospital reference documents, read-only to the engine
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/welldesk/careline/internal/models"
)

// Embedder turns query text into a fixed-length vector
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// Index holds embedded knowledge chunks and answers nearest-neighbor queries.
// Safe for concurrent readers; writes happen only at ingestion time.
type Index struct {
	db        *sql.DB
	embedder  Embedder
	dimension int
}

// Open opens (creating if needed) an index at the given path.
// Every chunk in one index carries a vector of exactly dimension entries.
func Open(path string, embedder Embedder, dimension int) (*Index, error) {
	if dimension < 1 {
		return nil, fmt.Errorf("invalid embedding dimension: %d", dimension)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		chunk_id   TEXT PRIMARY KEY,
		source_doc TEXT NOT NULL,
		start_offset INTEGER NOT NULL,
		text       TEXT NOT NULL,
		vector     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source_doc);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create index schema: %w", err)
	}

	return &Index{db: db, embedder: embedder, dimension: dimension}, nil
}

// Close closes the underlying database
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Add stores one embedded chunk, enforcing the dimensionality invariant
func (ix *Index) Add(ctx context.Context, chunk models.KnowledgeChunk) error {
	if len(chunk.Vector) != ix.dimension {
		return fmt.Errorf("invalid embedding dimension: expected %d, got %d", ix.dimension, len(chunk.Vector))
	}

	vec, err := json.Marshal(chunk.Vector)
	if err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}

	_, err = ix.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO chunks (chunk_id, source_doc, start_offset, text, vector) VALUES (?, ?, ?, ?, ?)`,
		chunk.ChunkID, chunk.SourceDoc, chunk.Offset, chunk.Text, string(vec))
	if err != nil {
		return fmt.Errorf("failed to store chunk: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// Search embeds the query and returns up to maxResults chunks ranked by
// cosine similarity, descending.
func (ix *Index) Search(ctx context.Context, query string, maxResults int) (models.RetrievalResult, error) {
	queryVector, err := ix.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := ix.db.QueryContext(ctx, `SELECT chunk_id, source_doc, start_offset, text, vector FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results models.RetrievalResult
	for rows.Next() {
		var chunk models.KnowledgeChunk
		var rawVec string
		if err := rows.Scan(&chunk.ChunkID, &chunk.SourceDoc, &chunk.Offset, &chunk.Text, &rawVec); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		if err := json.Unmarshal([]byte(rawVec), &chunk.Vector); err != nil {
			continue
		}

		results = append(results, models.ScoredChunk{
			Chunk: chunk,
			Score: cosineSimilarity(queryVector, chunk.Vector),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunks: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
