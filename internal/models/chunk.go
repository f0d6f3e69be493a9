// ABOUTME: KnowledgeChunk is an embedded fragment of hospital reference documentation
// ABOUTME: Read-only to the engine; created once at ingestion time
package models

// KnowledgeChunk is an immutable embedded fragment of a reference document
type KnowledgeChunk struct {
	ChunkID   string    `json:"chunk_id"`
	Text      string    `json:"text"`
	Vector    []float64 `json:"vector,omitempty"`
	SourceDoc string    `json:"source_doc"`
	Offset    int       `json:"offset"`
}

// ScoredChunk pairs a chunk with its similarity score for one query
type ScoredChunk struct {
	Chunk KnowledgeChunk `json:"chunk"`
	Score float64        `json:"score"`
}

// RetrievalResult is an ordered (descending by score) set of scored chunks,
// at most top-k long, scoped to a single triage or home-care turn.
type RetrievalResult []ScoredChunk

// Texts returns the chunk texts in rank order
func (r RetrievalResult) Texts() []string {
	out := make([]string, len(r))
	for i, sc := range r {
		out[i] = sc.Chunk.Text
	}
	return out
}
