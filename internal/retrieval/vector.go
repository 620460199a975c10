package retrieval

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/oneiro-ai/oneiro/internal/models"
)

// ErrDimensionMismatch indicates a stored embedding whose length differs
// from the query vector. The embedding dimension is a deployment
// constant asserted at startup, so this is a configuration fault and is
// never swallowed per query.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Hit pairs an entry with its cosine distance from the query vector.
type Hit struct {
	Entry    models.DreamEntry
	Distance float64
}

// SearchVectors ranks the candidate pool by cosine distance to the query
// vector, ascending, ties broken by most-recent indexed_at. Entries
// without an embedding are not candidates. At most topK hits within
// maxDistance are returned; maxDistance <= 0 disables the cutoff.
func SearchVectors(query []float32, pool []models.DreamEntry, topK int, maxDistance float64) ([]Hit, error) {
	if len(query) == 0 {
		return nil, errors.New("empty query vector")
	}

	hits := make([]Hit, 0, len(pool))
	for _, entry := range pool {
		if !entry.HasEmbedding() {
			continue
		}
		if len(entry.Embedding) != len(query) {
			return nil, fmt.Errorf("%w: entry %q has %d dims, query has %d",
				ErrDimensionMismatch, entry.Title, len(entry.Embedding), len(query))
		}
		dist := cosineDistance(query, entry.Embedding)
		if maxDistance > 0 && dist > maxDistance {
			continue
		}
		hits = append(hits, Hit{Entry: entry, Distance: dist})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Entry.IndexedAt.After(hits[j].Entry.IndexedAt)
	})

	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// cosineDistance is 1 - cosine similarity, in [0, 2]. Zero-norm vectors
// carry no direction and are treated as maximally distant from anything.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
