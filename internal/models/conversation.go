package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Conversation represents a persistent chat session over a dream project.
type Conversation struct {
	ID        surrealmodels.RecordID `json:"id"`
	Title     string                 `json:"title"`
	Project   string                 `json:"project,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Message represents a single chat message within a conversation.
type Message struct {
	ID           surrealmodels.RecordID `json:"id"`
	Conversation surrealmodels.RecordID `json:"conversation"`
	Role         string                 `json:"role"`
	Content      string                 `json:"content"`
	CreatedAt    time.Time              `json:"created_at"`
}
