package service

import (
	"strings"
	"testing"

	"github.com/oneiro-ai/oneiro/internal/assemble"
	"github.com/oneiro-ai/oneiro/internal/config"
	"github.com/oneiro-ai/oneiro/internal/llm"
	"github.com/oneiro-ai/oneiro/internal/models"
	"github.com/oneiro-ai/oneiro/internal/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dreamEntry(title, summary string, tags, entities []string) models.DreamEntry {
	return models.DreamEntry{
		Title:       title,
		Summary:     summary,
		Tags:        tags,
		KeyEntities: entities,
	}
}

func testService(cfg config.Config) *AssistantService {
	return NewAssistantService(nil, nil, nil, nil, cfg)
}

func TestBuildMessagesWithContext(t *testing.T) {
	s := testService(config.Config{})

	block := assemble.ContextBlock{
		Sections: []assemble.Section{
			{Heading: "Falling Through Water (2026-08-01)", Body: "Sinking slowly."},
		},
		TotalChars: 40,
	}
	history := []llm.Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}

	messages := s.buildMessages(block, retrieval.Result{}, history, "why do I dream of water?")

	require.Len(t, messages, 4)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "Falling Through Water")
	assert.Contains(t, messages[0].Content, "Sinking slowly.")
	assert.Equal(t, history[0], messages[1])
	assert.Equal(t, history[1], messages[2])
	assert.Equal(t, llm.Message{Role: "user", Content: "why do I dream of water?"}, messages[3])
}

func TestBuildMessagesEmptyContext(t *testing.T) {
	s := testService(config.Config{})

	messages := s.buildMessages(assemble.ContextBlock{}, retrieval.Result{}, nil, "anything")

	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].Content, "No journal excerpts matched")
}

func TestBuildMessagesRelaysNotesAndDegradation(t *testing.T) {
	s := testService(config.Config{})

	result := retrieval.Result{
		Notes:    []string{`no dream titled "The Door" found`},
		Degraded: true,
	}
	messages := s.buildMessages(assemble.ContextBlock{}, result, nil, "tell me about \"The Door\"")

	system := messages[0].Content
	assert.Contains(t, system, `no dream titled "The Door" found`)
	assert.Contains(t, system, "Semantic search was unavailable")
}

func TestStrategySelection(t *testing.T) {
	cfg := config.Config{
		TopK:             5,
		SemanticProjects: []string{"dreams"},
	}

	// No embedder: always keyword-only, even for semantic projects.
	s := testService(cfg)
	_, ok := s.strategyFor("dreams").(retrieval.KeywordOnly)
	assert.True(t, ok, "nil embedder should force keyword-only")

	// With an embedder, opted-in projects get the full router.
	s = NewAssistantService(nil, &llm.Embedder{}, nil, nil, cfg)
	_, ok = s.strategyFor("dreams").(retrieval.SingleOrPattern)
	assert.True(t, ok, "semantic project should use classifier+router")

	_, ok = s.strategyFor("scratch").(retrieval.KeywordOnly)
	assert.True(t, ok, "non-semantic project should stay keyword-only")
}

func TestEmbeddingText(t *testing.T) {
	entry := dreamEntry("Falling", "water dream", []string{"water"}, []string{"ocean"})
	text := embeddingText(entry)

	assert.True(t, strings.HasPrefix(text, "Falling\n"))
	assert.Contains(t, text, "Tags: water")
	assert.Contains(t, text, "Entities: ocean")
	assert.True(t, strings.HasSuffix(text, "water dream"))
}
