package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// UsageRecord holds monotonically accumulated token counters.
// In-process counters reset only at process start; persisted rows
// (TokenUsage) survive across runs for the usage command.
type UsageRecord struct {
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
	CallCount        int64  `json:"call_count"`
	ModelID          string `json:"model_id,omitempty"`
}

// TotalTokens is the sum of prompt and completion tokens.
func (u UsageRecord) TotalTokens() int64 {
	return u.PromptTokens + u.CompletionTokens
}

// TokenUsage is one persisted per-turn usage row.
type TokenUsage struct {
	ID               surrealmodels.RecordID `json:"id"`
	ModelID          string                 `json:"model_id"`
	PromptTokens     int64                  `json:"prompt_tokens"`
	CompletionTokens int64                  `json:"completion_tokens"`
	Interrupted      bool                   `json:"interrupted"`
	CreatedAt        time.Time              `json:"created_at"`
}
