// ABOUTME: Splitter cuts reference documents into paragraph-sized chunks for embedding
// ABOUTME: Keeps byte offsets so chunks can be traced back to their source document
package ingest

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/welldesk/careline/internal/models"
)

// Splitter handles document chunking
type Splitter struct{}

// NewSplitter creates a new Splitter instance
func NewSplitter() *Splitter {
	return &Splitter{}
}

// Split cuts a document into paragraph chunks (double newline boundaries).
// Paragraphs longer than maxChunkChars are further split on sentence
// boundaries. Vectors are left empty; the ingester fills them in.
func (s *Splitter) Split(text, sourceDoc string, maxChunkChars int) ([]models.KnowledgeChunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("cannot split empty document")
	}
	if maxChunkChars <= 0 {
		maxChunkChars = 1200
	}

	normalized := strings.ReplaceAll(text, "\r\n", "\n")

	var chunks []models.KnowledgeChunk
	offset := 0
	for _, para := range strings.Split(normalized, "\n\n") {
		trimmed := strings.TrimSpace(para)
		if trimmed == "" {
			offset += len(para) + 2
			continue
		}

		if len(trimmed) <= maxChunkChars {
			chunks = append(chunks, newChunk(trimmed, sourceDoc, offset))
		} else {
			inner := 0
			for _, sent := range splitSentences(trimmed, maxChunkChars) {
				chunks = append(chunks, newChunk(sent, sourceDoc, offset+inner))
				inner += len(sent) + 1
			}
		}
		offset += len(para) + 2
	}

	if len(chunks) == 0 {
		return nil, errors.New("document produced no chunks")
	}
	return chunks, nil
}

// newChunk builds an unembedded chunk
func newChunk(text, sourceDoc string, offset int) models.KnowledgeChunk {
	return models.KnowledgeChunk{
		ChunkID:   "chunk_" + uuid.New().String(),
		Text:      text,
		SourceDoc: sourceDoc,
		Offset:    offset,
	}
}

// splitSentences splits text by ". " and regroups sentences up to maxChars
func splitSentences(text string, maxChars int) []string {
	sentences := strings.Split(text, ". ")

	var groups []string
	var current strings.Builder
	for i, sent := range sentences {
		sent = strings.TrimSpace(sent)
		if sent == "" {
			continue
		}
		if i < len(sentences)-1 && !strings.HasSuffix(sent, ".") {
			sent += "."
		}

		if current.Len() > 0 && current.Len()+len(sent)+1 > maxChars {
			groups = append(groups, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
	}
	if current.Len() > 0 {
		groups = append(groups, current.String())
	}
	return groups
}
