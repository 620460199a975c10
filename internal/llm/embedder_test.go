package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oneiro-ai/oneiro/internal/config"
	"github.com/oneiro-ai/oneiro/internal/retrieval"
)

type failingEmbedModel struct {
	err error
}

func (f *failingEmbedModel) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, f.err
}

func (f *failingEmbedModel) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return nil, f.err
}

func TestNewEmbedderRejectsBedrock(t *testing.T) {
	cfg := config.Config{
		EmbedProvider:  config.ProviderBedrock,
		EmbedModel:     "amazon.titan-embed-text-v2:0",
		EmbedDimension: 384,
	}

	_, err := NewEmbedder(context.Background(), cfg)
	if err == nil {
		t.Fatal("NewEmbedder() accepted bedrock, want error")
	}
	if !strings.Contains(err.Error(), "completions only") {
		t.Errorf("error %q should explain bedrock serves completions only", err)
	}
}

func TestNewEmbedderUnknownProvider(t *testing.T) {
	cfg := config.Config{EmbedProvider: config.Provider("cohere"), EmbedDimension: 384}

	if _, err := NewEmbedder(context.Background(), cfg); err == nil {
		t.Fatal("NewEmbedder() accepted unknown provider, want error")
	}
}

func TestEmbedWrapsUnavailableSentinel(t *testing.T) {
	e := &Embedder{
		model:     &failingEmbedModel{err: errors.New("connection refused")},
		dimension: 384,
		modelName: "all-minilm",
	}

	_, err := e.Embed(context.Background(), "recurring dream about water")
	if err == nil {
		t.Fatal("Embed() = nil error, want failure")
	}
	if !errors.Is(err, retrieval.ErrEmbeddingUnavailable) {
		t.Errorf("Embed() error %v should wrap retrieval.ErrEmbeddingUnavailable", err)
	}
}

func TestEmbedBatchWrapsUnavailableSentinel(t *testing.T) {
	e := &Embedder{
		model:     &failingEmbedModel{err: errors.New("timeout")},
		dimension: 384,
		modelName: "all-minilm",
	}

	_, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	if !errors.Is(err, retrieval.ErrEmbeddingUnavailable) {
		t.Errorf("EmbedBatch() error %v should wrap retrieval.ErrEmbeddingUnavailable", err)
	}
}
