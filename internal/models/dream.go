package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// DreamEntry is one indexed dream-analysis session.
// Entries are written by the import/backfill plumbing and read-only to
// the retrieval core. Embedding is absent until the entry has been
// backfilled or was imported into a project opted into semantic indexing.
type DreamEntry struct {
	ID          surrealmodels.RecordID `json:"id"`
	Title       string                 `json:"title"`
	Project     string                 `json:"project"`
	Summary     string                 `json:"summary"`
	Tags        []string               `json:"tags,omitempty"`
	KeyEntities []string               `json:"key_entities,omitempty"`
	Embedding   []float32              `json:"embedding,omitempty"`
	IndexedAt   time.Time              `json:"indexed_at"`
}

// HasEmbedding reports whether the entry participates in vector search.
func (d DreamEntry) HasEmbedding() bool {
	return len(d.Embedding) > 0
}

// StreamedResponse is a persisted assistant response for one turn.
// Partial is set when the stream was paused or failed before end-of-stream.
type StreamedResponse struct {
	ID           surrealmodels.RecordID `json:"id"`
	Conversation *surrealmodels.RecordID `json:"conversation,omitempty"`
	Content      string                 `json:"content"`
	Partial      bool                   `json:"partial"`
	CharCount    int                    `json:"char_count"`
	ModelID      string                 `json:"model_id,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}
