// Package retrieval routes user queries to exact title lookup or
// semantic similarity search over indexed dream entries.
package retrieval

import (
	"context"
	"errors"

	"github.com/oneiro-ai/oneiro/internal/models"
)

// ErrEmbeddingUnavailable marks embedding-service failures (network,
// timeout, malformed response). Gateway implementations wrap it so the
// router can degrade to keyword retrieval instead of failing the turn.
var ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

// Mode selects the retrieval path for one turn.
type Mode int

const (
	// ModePatternSearch retrieves via semantic similarity over many entries.
	ModePatternSearch Mode = iota

	// ModeSingleItem retrieves one entry identified by quoted title.
	ModeSingleItem
)

func (m Mode) String() string {
	if m == ModeSingleItem {
		return "single_item"
	}
	return "pattern_search"
}

// Query is the classified form of one user turn. Derived once, immutable.
type Query struct {
	Raw   string
	Mode  Mode
	Title string // dequoted, trimmed title; empty unless ModeSingleItem
}

// Result is the outcome of one retrieval call. Items are ordered
// most-relevant first; an empty Items slice is a valid result, not an
// error. Notes carry caller-facing diagnostics ("did you mean",
// degraded-mode markers).
type Result struct {
	Mode       Mode
	Items      []models.DreamEntry
	Confidence *float64
	Notes      []string
	Degraded   bool
}

// EntrySource lists indexed entries within a project scope.
type EntrySource interface {
	ListEntries(ctx context.Context, project string) ([]models.DreamEntry, error)
}

// EmbeddingGateway converts raw query text to a vector.
type EmbeddingGateway interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

func confidence(v float64) *float64 {
	return &v
}
