// Package service orchestrates retrieval, context assembly and streamed
// completion into whole assistant turns.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oneiro-ai/oneiro/internal/assemble"
	"github.com/oneiro-ai/oneiro/internal/config"
	"github.com/oneiro-ai/oneiro/internal/db"
	"github.com/oneiro-ai/oneiro/internal/llm"
	"github.com/oneiro-ai/oneiro/internal/models"
	"github.com/oneiro-ai/oneiro/internal/retrieval"
	"github.com/oneiro-ai/oneiro/internal/stream"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const systemPrompt = `You are a dream-analysis assistant. Interpret the user's dreams using only the journal excerpts provided as context.
Ground every observation in a specific excerpt; if the context does not cover something, say so rather than invent material.
Be thoughtful and concise.`

// AssistantService wires the dream journal store, the embedder and the
// completion model into the chat surface the CLI talks to.
type AssistantService struct {
	db       *db.Client
	embedder *llm.Embedder
	model    *llm.Model
	tracker  *stream.UsageTracker
	cfg      config.Config
}

// NewAssistantService creates the assistant. model and embedder may be
// nil for retrieval-only commands; ChatTurn requires both.
func NewAssistantService(database *db.Client, embedder *llm.Embedder, model *llm.Model, tracker *stream.UsageTracker, cfg config.Config) *AssistantService {
	return &AssistantService{
		db:       database,
		embedder: embedder,
		model:    model,
		tracker:  tracker,
		cfg:      cfg,
	}
}

// VerifyEmbedding asserts at startup that the embedder really produces
// vectors of the configured dimension. A mismatch here means the stored
// index and the query vectors can never agree, so it is fatal.
func (s *AssistantService) VerifyEmbedding(ctx context.Context) error {
	if s.embedder == nil {
		return nil
	}
	if _, err := s.embedder.Embed(ctx, "dimension check"); err != nil {
		return fmt.Errorf("embedding verification: %w", err)
	}
	return nil
}

// strategyFor selects the retrieval capability for a project scope.
// Projects not opted into semantic indexing never trigger embedding
// calls; they get plain keyword matching.
func (s *AssistantService) strategyFor(project string) retrieval.Strategy {
	if !s.cfg.SemanticIndexing(project) || s.embedder == nil {
		return retrieval.KeywordOnly{Source: s.db, Limit: s.cfg.TopK}
	}
	return retrieval.SingleOrPattern{
		Router: &retrieval.Router{
			Source:      s.db,
			Gateway:     s.embedder,
			Matcher:     retrieval.TitleMatcher{Threshold: s.cfg.TitleThreshold},
			TopK:        s.cfg.TopK,
			MaxDistance: s.cfg.MaxDistance,
		},
		MaxTitleLen: s.cfg.MaxTitleLen,
	}
}

// Retrieve resolves one user message against the journal: quoted-title
// lookup or semantic pattern search, depending on how the text reads.
func (s *AssistantService) Retrieve(ctx context.Context, text, project string) (retrieval.Result, error) {
	return s.strategyFor(project).Retrieve(ctx, text, project)
}

// RetrieveAndAssemble is the single context-building surface: retrieval
// followed by bounded assembly. The returned block never exceeds the
// configured cap; empty is a valid outcome.
func (s *AssistantService) RetrieveAndAssemble(ctx context.Context, text, project string) (assemble.ContextBlock, retrieval.Result, error) {
	result, err := s.Retrieve(ctx, text, project)
	if err != nil {
		return assemble.ContextBlock{}, result, err
	}
	assembler := assemble.Assembler{
		FieldBudget: s.cfg.FieldCharBudget,
		TotalCap:    s.cfg.ContextCharCap,
	}
	block := assembler.Assemble(result)
	slog.Debug("context assembled",
		"mode", result.Mode.String(),
		"items", len(result.Items),
		"sections", len(block.Sections),
		"chars", block.TotalChars)
	return block, result, nil
}

// SearchKeywords runs the database-side BM25 full-text search. Used by
// the explicit keyword search command; the chat path degrades through
// the in-process matcher instead so it can reuse its candidate pool.
func (s *AssistantService) SearchKeywords(ctx context.Context, query, project string, limit int) ([]models.DreamEntry, error) {
	return s.db.SearchKeywords(ctx, query, project, limit)
}

// TurnOptions configures one chat turn.
type TurnOptions struct {
	Project string

	// Conversation to persist the exchange under; nil skips message
	// bookkeeping but still persists the response itself.
	Conversation *surrealmodels.RecordID

	// History is prior exchanges, oldest first, without system prompt.
	History []llm.Message

	// Lines is the side channel watched for the pause token while the
	// response streams. Nil disables mid-stream pausing.
	Lines <-chan string

	// OnChunk receives each streamed delta for display.
	OnChunk func(chunk string)
}

// ChatTurn runs one full turn: retrieve, assemble, stream the answer,
// persist the response (partial-marked when interrupted) and account
// usage. The returned outcome reports how the stream ended.
func (s *AssistantService) ChatTurn(ctx context.Context, userText string, opts TurnOptions) (stream.Outcome, retrieval.Result, error) {
	if s.model == nil {
		return stream.Outcome{}, retrieval.Result{}, fmt.Errorf("LLM model not configured")
	}

	block, result, err := s.RetrieveAndAssemble(ctx, userText, opts.Project)
	if err != nil {
		return stream.Outcome{}, result, err
	}

	messages := s.buildMessages(block, result, opts.History, userText)

	session := stream.NewSession(s.model, s.db.Responses(opts.Conversation), s.tracker)
	if opts.Lines != nil {
		listener := stream.NewCancelListener(opts.Lines, s.cfg.PauseTokens(), session.CancelFlag())
		defer listener.Stop(s.cfg.ListenerStopWindow)
	}

	outcome, runErr := session.Run(ctx, messages, opts.OnChunk)

	// Persisted accounting mirrors the in-process tracker: one row per
	// terminal transition, skipped when the provider reported nothing.
	if outcome.Usage != nil {
		interrupted := outcome.State != stream.StateCompleted
		if err := s.db.RecordTokenUsage(ctx, s.model.Model(), outcome.Usage.PromptTokens, outcome.Usage.CompletionTokens, interrupted); err != nil {
			slog.Warn("failed to persist token usage", "error", err)
		}
	}

	if opts.Conversation != nil {
		s.appendExchange(ctx, *opts.Conversation, userText, outcome.Content)
	}

	return outcome, result, runErr
}

// buildMessages assembles the completion request: system prompt with
// journal context, prior history, then the user's message.
func (s *AssistantService) buildMessages(block assemble.ContextBlock, result retrieval.Result, history []llm.Message, userText string) []llm.Message {
	system := systemPrompt
	if !block.Empty() {
		system += "\n\nJournal excerpts:\n\n" + block.Render()
	} else {
		system += "\n\nNo journal excerpts matched this message. Tell the user nothing relevant was found and suggest rephrasing."
	}
	for _, note := range result.Notes {
		system += "\n\nNote to relay to the user: " + note
	}
	if result.Degraded {
		system += "\n\nSemantic search was unavailable for this turn; the excerpts come from keyword matching and may be less relevant."
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: system})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: userText})
	return messages
}

// appendExchange records both sides of the turn. Interrupted responses
// are recorded too; the response row already carries the partial mark.
func (s *AssistantService) appendExchange(ctx context.Context, conversation surrealmodels.RecordID, userText, answer string) {
	if err := s.db.AppendMessage(ctx, conversation, "user", userText); err != nil {
		slog.Warn("failed to persist user message", "error", err)
	}
	if answer == "" {
		return
	}
	if err := s.db.AppendMessage(ctx, conversation, "assistant", answer); err != nil {
		slog.Warn("failed to persist assistant message", "error", err)
	}
}
