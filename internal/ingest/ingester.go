// ABOUTME: Ingester embeds document chunks and loads them into the knowledge index
// ABOUTME: The only writer of the index; the dialogue engine itself is read-only
package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/welldesk/careline/internal/index"
)

// Embedder turns chunk text into a fixed-length vector
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// Ingester splits, embeds, and stores reference documents
type Ingester struct {
	splitter *Splitter
	embedder Embedder
	index    *index.Index
}

// NewIngester creates a new Ingester
func NewIngester(embedder Embedder, ix *index.Index) *Ingester {
	return &Ingester{
		splitter: NewSplitter(),
		embedder: embedder,
		index:    ix,
	}
}

// IngestDocument chunks one document, embeds each chunk, and stores it.
// Returns the number of chunks stored.
func (in *Ingester) IngestDocument(ctx context.Context, text, sourceDoc string) (int, error) {
	chunks, err := in.splitter.Split(text, sourceDoc, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to split %s: %w", sourceDoc, err)
	}

	stored := 0
	for _, chunk := range chunks {
		vector, err := in.embedder.GenerateEmbedding(ctx, chunk.Text)
		if err != nil {
			return stored, fmt.Errorf("failed to embed chunk %s: %w", chunk.ChunkID, err)
		}
		chunk.Vector = vector

		if err := in.index.Add(ctx, chunk); err != nil {
			return stored, fmt.Errorf("failed to store chunk %s: %w", chunk.ChunkID, err)
		}
		stored++
	}

	log.Printf("[Ingest] stored %d chunks from %s", stored, sourceDoc)
	return stored, nil
}
