// ABOUTME: Tests for the document ingester
// ABOUTME: Verifies embed-and-store flow against a temp index
package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/welldesk/careline/internal/index"
)

type stubEmbedder struct {
	calls int
	fail  bool
}

func (e *stubEmbedder) GenerateEmbedding(_ context.Context, _ string) ([]float64, error) {
	e.calls++
	if e.fail {
		return nil, errors.New("embedding unavailable")
	}
	return []float64{1, 0, 0}, nil
}

func openTestIndex(t *testing.T, embedder index.Embedder) *index.Index {
	t.Helper()
	ix, err := index.Open(filepath.Join(t.TempDir(), "knowledge.db"), embedder, 3)
	if err != nil {
		t.Fatalf("index.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func TestIngestDocument(t *testing.T) {
	embedder := &stubEmbedder{}
	ix := openTestIndex(t, embedder)
	ing := NewIngester(embedder, ix)

	text := "Fever is common.\n\nHydration helps recovery.\n\nSeek care for persistent fever."
	n, err := ing.IngestDocument(context.Background(), text, "fever.md")
	if err != nil {
		t.Fatalf("IngestDocument() error = %v", err)
	}

	if n != 3 {
		t.Errorf("stored %d chunks, want 3", n)
	}
	if embedder.calls != 3 {
		t.Errorf("embedder calls = %d, want one per chunk", embedder.calls)
	}

	count, err := ix.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("index count = %d, want 3", count)
	}
}

func TestIngestDocument_EmbedderFailure(t *testing.T) {
	embedder := &stubEmbedder{fail: true}
	ix := openTestIndex(t, embedder)
	ing := NewIngester(embedder, ix)

	n, err := ing.IngestDocument(context.Background(), "Some guidance text.", "doc.md")
	if err == nil {
		t.Fatal("IngestDocument() should propagate embedding failures")
	}
	if n != 0 {
		t.Errorf("stored %d chunks before failure, want 0", n)
	}
}

func TestIngestDocument_EmptyDocument(t *testing.T) {
	embedder := &stubEmbedder{}
	ix := openTestIndex(t, embedder)
	ing := NewIngester(embedder, ix)

	if _, err := ing.IngestDocument(context.Background(), "   ", "empty.md"); err == nil {
		t.Error("IngestDocument() should reject empty documents")
	}
}
