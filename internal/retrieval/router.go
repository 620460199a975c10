package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oneiro-ai/oneiro/internal/models"
)

// Router composes the classifier outputs with the title matcher and the
// vector index. The two retrieval paths are mutually exclusive per turn;
// partial results are never blended across them.
type Router struct {
	Source  EntrySource
	Gateway EmbeddingGateway
	Matcher TitleMatcher

	TopK        int
	MaxDistance float64

	// FallbackOnEmpty additionally runs the keyword path when a pattern
	// search finds nothing above the relevance cutoff. Off by default:
	// an empty semantic result normally reads "no relevant dreams".
	FallbackOnEmpty bool
}

// Retrieve resolves one classified query within a project scope. A call
// yielding zero items is a valid empty result; only configuration-level
// faults (dimension mismatch) and store failures surface as errors.
func (r *Router) Retrieve(ctx context.Context, query Query, project string) (Result, error) {
	candidates, err := r.Source.ListEntries(ctx, project)
	if err != nil {
		return Result{Mode: query.Mode}, fmt.Errorf("list entries: %w", err)
	}

	if query.Mode == ModeSingleItem {
		return r.Matcher.Match(query.Title, candidates), nil
	}
	return r.patternSearch(ctx, query, candidates)
}

func (r *Router) patternSearch(ctx context.Context, query Query, candidates []models.DreamEntry) (Result, error) {
	result := Result{Mode: ModePatternSearch}

	vector, err := r.Gateway.Embed(ctx, query.Raw)
	if err != nil {
		if errors.Is(err, ErrEmbeddingUnavailable) {
			slog.Warn("embedding unavailable, degrading to keyword search", "error", err)
			result.Items = SearchKeywords(query.Raw, candidates, r.TopK)
			result.Degraded = true
			result.Notes = append(result.Notes, "semantic search unavailable; showing keyword matches")
			return result, nil
		}
		return result, fmt.Errorf("embed query: %w", err)
	}

	hits, err := SearchVectors(vector, candidates, r.TopK, r.MaxDistance)
	if err != nil {
		// Dimension mismatch is a configuration fault; let it climb.
		return result, err
	}

	if len(hits) == 0 {
		if r.FallbackOnEmpty {
			result.Items = SearchKeywords(query.Raw, candidates, r.TopK)
			result.Degraded = len(result.Items) > 0
		}
		if len(result.Items) == 0 {
			result.Notes = append(result.Notes, "no relevant dreams found")
		}
		return result, nil
	}

	result.Items = make([]models.DreamEntry, 0, len(hits))
	for _, h := range hits {
		result.Items = append(result.Items, h.Entry)
	}
	best := 1 - hits[0].Distance
	result.Confidence = confidence(best)
	return result, nil
}
