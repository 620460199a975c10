package retrieval

import (
	"errors"
	"testing"
	"time"

	"github.com/oneiro-ai/oneiro/internal/models"
)

func embedded(id string, vec []float32, indexed time.Time) models.DreamEntry {
	d := dream(id, id, indexed)
	d.Embedding = vec
	return d
}

func TestSearchVectorsOrdering(t *testing.T) {
	now := time.Now()
	pool := []models.DreamEntry{
		embedded("far", []float32{0, 1, 0}, now),
		embedded("close", []float32{0.9, 0.1, 0}, now),
		embedded("exact", []float32{1, 0, 0}, now),
		dream("no-embedding", "no-embedding", now),
	}

	hits, err := SearchVectors([]float32{1, 0, 0}, pool, 10, 0)
	if err != nil {
		t.Fatalf("SearchVectors() error = %v", err)
	}

	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3 (entry without embedding excluded)", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Errorf("hits not in non-decreasing distance order at index %d", i)
		}
	}
	if hits[0].Entry.Title != "exact" {
		t.Errorf("closest = %q, want %q", hits[0].Entry.Title, "exact")
	}
}

func TestSearchVectorsTopK(t *testing.T) {
	now := time.Now()
	pool := make([]models.DreamEntry, 0, 8)
	for i := range 8 {
		pool = append(pool, embedded(string(rune('a'+i)), []float32{1, float32(i) * 0.05}, now))
	}

	hits, err := SearchVectors([]float32{1, 0}, pool, 3, 0)
	if err != nil {
		t.Fatalf("SearchVectors() error = %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("got %d hits, want top_k = 3", len(hits))
	}
}

func TestSearchVectorsRelevanceCutoff(t *testing.T) {
	now := time.Now()
	pool := []models.DreamEntry{
		embedded("relevant", []float32{1, 0}, now),
		embedded("irrelevant", []float32{-1, 0}, now),
	}

	hits, err := SearchVectors([]float32{1, 0}, pool, 10, 0.55)
	if err != nil {
		t.Fatalf("SearchVectors() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want weak matches excluded", len(hits))
	}
	if hits[0].Entry.Title != "relevant" {
		t.Errorf("kept %q", hits[0].Entry.Title)
	}
}

func TestSearchVectorsTieBreakByRecency(t *testing.T) {
	now := time.Now()
	pool := []models.DreamEntry{
		embedded("older", []float32{1, 0}, now.Add(-time.Hour)),
		embedded("newer", []float32{1, 0}, now),
	}

	hits, err := SearchVectors([]float32{1, 0}, pool, 10, 0)
	if err != nil {
		t.Fatalf("SearchVectors() error = %v", err)
	}
	if len(hits) != 2 || hits[0].Entry.Title != "newer" {
		t.Errorf("equal distances must order most recently indexed first")
	}
}

func TestSearchVectorsDimensionMismatch(t *testing.T) {
	now := time.Now()
	pool := []models.DreamEntry{
		embedded("bad", []float32{1, 0, 0}, now),
	}

	_, err := SearchVectors([]float32{1, 0}, pool, 10, 0)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}
}

func TestCosineDistanceZeroNorm(t *testing.T) {
	if got := cosineDistance([]float32{0, 0}, []float32{1, 0}); got != 2 {
		t.Errorf("zero-norm distance = %v, want 2", got)
	}
}
