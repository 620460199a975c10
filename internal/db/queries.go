// Package db provides SurrealDB query functions for dream journal operations.
package db

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/oneiro-ai/oneiro/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// ListEntries returns all indexed dreams in a project, most recently
// indexed first. This is the candidate pool for title matching and
// in-process vector search; entries without embeddings are included
// (title matching still covers them).
func (c *Client) ListEntries(ctx context.Context, project string) ([]models.DreamEntry, error) {
	results, err := surrealdb.Query[[]models.DreamEntry](ctx, c.db, `
		SELECT * FROM dream WHERE project = $project ORDER BY indexed_at DESC
	`, map[string]any{"project": project})
	if err != nil {
		return nil, fmt.Errorf("list dreams: %w", wrapQueryError(err))
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return []models.DreamEntry{}, nil
}

// ListEntriesMissingEmbedding returns dreams awaiting backfill.
func (c *Client) ListEntriesMissingEmbedding(ctx context.Context, project string) ([]models.DreamEntry, error) {
	results, err := surrealdb.Query[[]models.DreamEntry](ctx, c.db, `
		SELECT * FROM dream
		WHERE project = $project AND embedding IS NONE
		ORDER BY indexed_at ASC
	`, map[string]any{"project": project})
	if err != nil {
		return nil, fmt.Errorf("list unembedded dreams: %w", wrapQueryError(err))
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return []models.DreamEntry{}, nil
}

// CreateDream inserts a new dream entry. An empty id gets a random one;
// indexed_at defaults to now on the database side.
func (c *Client) CreateDream(ctx context.Context, id string, entry models.DreamEntry) (*models.DreamEntry, error) {
	if id == "" {
		id = uuid.New().String()
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	if entry.KeyEntities == nil {
		entry.KeyEntities = []string{}
	}

	vars := map[string]any{
		"id":       id,
		"title":    entry.Title,
		"project":  entry.Project,
		"summary":  entry.Summary,
		"tags":     entry.Tags,
		"entities": entry.KeyEntities,
	}
	sql := `
		CREATE type::record("dream", $id) CONTENT {
			title: $title,
			project: $project,
			summary: $summary,
			tags: $tags,
			key_entities: $entities
		}
	`
	if entry.HasEmbedding() {
		vars["embedding"] = entry.Embedding
		sql = `
			CREATE type::record("dream", $id) CONTENT {
				title: $title,
				project: $project,
				summary: $summary,
				tags: $tags,
				key_entities: $entities,
				embedding: $embedding
			}
		`
	}

	results, err := surrealdb.Query[[]models.DreamEntry](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("create dream: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create dream: empty result")
	}
	return &(*results)[0].Result[0], nil
}

// SetEmbedding stores a backfilled embedding and refreshes indexed_at.
func (c *Client) SetEmbedding(ctx context.Context, id string, embedding []float32) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("dream", $id) SET
			embedding = $embedding,
			indexed_at = time::now()
	`, map[string]any{"id": id, "embedding": embedding})
	if err != nil {
		return fmt.Errorf("set embedding: %w", wrapQueryError(err))
	}
	return nil
}

// SearchKeywords runs BM25 full-text matching over dream summaries.
// Backs the explicit keyword search command; the chat path degrades
// through the in-process matcher so it can reuse its candidate pool.
func (c *Client) SearchKeywords(ctx context.Context, raw, project string, limit int) ([]models.DreamEntry, error) {
	results, err := surrealdb.Query[[]models.DreamEntry](ctx, c.db, `
		SELECT * FROM dream
		WHERE project = $project AND summary @0@ $q
		ORDER BY indexed_at DESC
		LIMIT $limit
	`, map[string]any{"q": raw, "project": project, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", wrapQueryError(err))
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return []models.DreamEntry{}, nil
}

// ============================================================================
// Responses and usage
// ============================================================================

// ResponseWriter persists streamed responses tied to one conversation.
// It satisfies the streaming session's store contract; a nil
// conversation id saves an unattached response.
type ResponseWriter struct {
	client       *Client
	conversation *surrealmodels.RecordID
}

// Responses returns a writer scoped to an optional conversation.
func (c *Client) Responses(conversation *surrealmodels.RecordID) *ResponseWriter {
	return &ResponseWriter{client: c, conversation: conversation}
}

// SaveResponse stores final or partial streamed content.
func (w *ResponseWriter) SaveResponse(ctx context.Context, content string, partial bool, modelID string) error {
	vars := map[string]any{
		"content":  content,
		"partial":  partial,
		"chars":    utf8.RuneCountInString(content),
		"model_id": modelID,
	}
	sql := `
		CREATE response CONTENT {
			content: $content,
			partial: $partial,
			char_count: $chars,
			model_id: $model_id
		}
	`
	if w.conversation != nil {
		vars["conversation"] = *w.conversation
		sql = `
			CREATE response CONTENT {
				conversation: $conversation,
				content: $content,
				partial: $partial,
				char_count: $chars,
				model_id: $model_id
			}
		`
	}
	if _, err := surrealdb.Query[any](ctx, w.client.db, sql, vars); err != nil {
		return fmt.Errorf("save response: %w", wrapQueryError(err))
	}
	return nil
}

// RecordTokenUsage persists one turn's token accounting row.
func (c *Client) RecordTokenUsage(ctx context.Context, modelID string, promptTokens, completionTokens int64, interrupted bool) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE token_usage CONTENT {
			model_id: $model_id,
			prompt_tokens: $prompt,
			completion_tokens: $completion,
			interrupted: $interrupted
		}
	`, map[string]any{
		"model_id":    modelID,
		"prompt":      promptTokens,
		"completion":  completionTokens,
		"interrupted": interrupted,
	})
	if err != nil {
		return fmt.Errorf("record token usage: %w", wrapQueryError(err))
	}
	return nil
}

// UsageSince returns persisted usage rows newer than the given time.
func (c *Client) UsageSince(ctx context.Context, since time.Time) ([]models.TokenUsage, error) {
	results, err := surrealdb.Query[[]models.TokenUsage](ctx, c.db, `
		SELECT * FROM token_usage WHERE created_at >= $since ORDER BY created_at DESC
	`, map[string]any{"since": since})
	if err != nil {
		return nil, fmt.Errorf("usage since: %w", wrapQueryError(err))
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return []models.TokenUsage{}, nil
}

// ============================================================================
// Conversations
// ============================================================================

// CreateConversation starts a new chat session record.
func (c *Client) CreateConversation(ctx context.Context, title, project string) (*models.Conversation, error) {
	results, err := surrealdb.Query[[]models.Conversation](ctx, c.db, `
		CREATE conversation CONTENT {
			title: $title,
			project: $project
		}
	`, map[string]any{"title": title, "project": project})
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create conversation: empty result")
	}
	return &(*results)[0].Result[0], nil
}

// AppendMessage adds a message to a conversation and touches updated_at.
func (c *Client) AppendMessage(ctx context.Context, conversation surrealmodels.RecordID, role, content string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE message CONTENT {
			conversation: $conversation,
			role: $role,
			content: $content
		};
		UPDATE $conversation SET updated_at = time::now();
	`, map[string]any{
		"conversation": conversation,
		"role":         role,
		"content":      content,
	})
	if err != nil {
		return fmt.Errorf("append message: %w", wrapQueryError(err))
	}
	return nil
}

// ListConversations returns sessions for a project, most recent first.
func (c *Client) ListConversations(ctx context.Context, project string, limit int) ([]models.Conversation, error) {
	results, err := surrealdb.Query[[]models.Conversation](ctx, c.db, `
		SELECT * FROM conversation WHERE project = $project ORDER BY updated_at DESC LIMIT $limit
	`, map[string]any{"project": project, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", wrapQueryError(err))
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return []models.Conversation{}, nil
}
