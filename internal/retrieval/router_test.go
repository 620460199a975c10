package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/oneiro-ai/oneiro/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	entries []models.DreamEntry
	err     error
}

func (f *fakeSource) ListEntries(_ context.Context, _ string) ([]models.DreamEntry, error) {
	return f.entries, f.err
}

type fakeGateway struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeGateway) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return f.vector, f.err
}

func waterPool() []models.DreamEntry {
	now := time.Now()
	ocean := dream("ocean", "Ocean at Night", now)
	ocean.Summary = "Swimming through dark water under a red moon."
	ocean.Tags = []string{"water", "fear"}
	ocean.Embedding = []float32{1, 0}

	flying := dream("flying", "My Flying Dream", now.Add(-time.Hour))
	flying.Summary = "Soaring over the city rooftops."
	flying.Tags = []string{"flight"}
	flying.Embedding = []float32{0, 1}

	return []models.DreamEntry{ocean, flying}
}

func newRouter(source EntrySource, gateway EmbeddingGateway) *Router {
	return &Router{
		Source:      source,
		Gateway:     gateway,
		Matcher:     TitleMatcher{Threshold: 0.62},
		TopK:        5,
		MaxDistance: 0.55,
	}
}

func TestRouterPatternSearch(t *testing.T) {
	source := &fakeSource{entries: waterPool()}
	gateway := &fakeGateway{vector: []float32{1, 0}}
	router := newRouter(source, gateway)

	query := Classify("What patterns do I have with water in my dreams?", 120)
	require.Equal(t, ModePatternSearch, query.Mode)

	result, err := router.Retrieve(context.Background(), query, "dreams")
	require.NoError(t, err)

	require.Len(t, result.Items, 1, "distant entries must be cut off")
	assert.Equal(t, "Ocean at Night", result.Items[0].Title)
	assert.False(t, result.Degraded)
	assert.Equal(t, 1, gateway.calls)
}

func TestRouterSingleItemNeverEmbeds(t *testing.T) {
	source := &fakeSource{entries: waterPool()}
	gateway := &fakeGateway{vector: []float32{1, 0}}
	router := newRouter(source, gateway)

	query := Classify(`What does "My Flying Dream" mean from a Jungian perspective?`, 120)
	require.Equal(t, ModeSingleItem, query.Mode)

	result, err := router.Retrieve(context.Background(), query, "dreams")
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "My Flying Dream", result.Items[0].Title)
	assert.Equal(t, 0, gateway.calls, "single-item path must not call the embedding gateway")
}

func TestRouterDegradesWhenEmbeddingUnavailable(t *testing.T) {
	source := &fakeSource{entries: waterPool()}
	gateway := &fakeGateway{err: fmt.Errorf("%w: connection refused", ErrEmbeddingUnavailable)}
	router := newRouter(source, gateway)

	query := Classify("What patterns do I have with water in my dreams?", 120)
	result, err := router.Retrieve(context.Background(), query, "dreams")
	require.NoError(t, err, "embedding outage is non-fatal")

	assert.True(t, result.Degraded)
	require.NotEmpty(t, result.Notes)
	assert.Contains(t, result.Notes[0], "semantic search unavailable")
	require.NotEmpty(t, result.Items, "keyword fallback should match the water dream")
	assert.Equal(t, "Ocean at Night", result.Items[0].Title)
}

func TestRouterEmptyPatternResultIsValid(t *testing.T) {
	now := time.Now()
	offTopic := dream("off", "Taxes Due", now)
	offTopic.Embedding = []float32{-1, 0}

	source := &fakeSource{entries: []models.DreamEntry{offTopic}}
	gateway := &fakeGateway{vector: []float32{1, 0}}
	router := newRouter(source, gateway)

	result, err := router.Retrieve(context.Background(), Classify("flying whales", 120), "dreams")
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Contains(t, result.Notes, "no relevant dreams found")
}

func TestRouterDimensionMismatchPropagates(t *testing.T) {
	pool := waterPool()
	source := &fakeSource{entries: pool}
	gateway := &fakeGateway{vector: []float32{1, 0, 0}} // wrong width
	router := newRouter(source, gateway)

	_, err := router.Retrieve(context.Background(), Classify("water", 120), "dreams")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestRouterSourceErrorPropagates(t *testing.T) {
	source := &fakeSource{err: errors.New("connection lost")}
	router := newRouter(source, &fakeGateway{})

	_, err := router.Retrieve(context.Background(), Classify("water", 120), "dreams")
	require.Error(t, err)
}

func TestKeywordOnlyStrategy(t *testing.T) {
	source := &fakeSource{entries: waterPool()}
	strategy := KeywordOnly{Source: source, Limit: 5}

	result, err := strategy.Retrieve(context.Background(), "red moon water", "dreams")
	require.NoError(t, err)
	require.NotEmpty(t, result.Items)
	assert.Equal(t, "Ocean at Night", result.Items[0].Title)
}
