package chatModel

import (
	"context"
	"time"

	"github.com/akolanti/BookRAG/internal/domain/commonModels"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Conversation struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationSummary is a conversation with its message count, used for listings.
type ConversationSummary struct {
	Conversation
	MessageCount int `json:"message_count"`
}

// Message is immutable once written.
type Message struct {
	Id             string                      `json:"id"`
	ConversationId string                      `json:"conversation_id"`
	Role           Role                        `json:"role"`
	Content        string                      `json:"content"`
	SelectedText   string                      `json:"selected_text,omitempty"`
	Sources        []commonModels.SourceResult `json:"sources,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
}

// ConversationStore persists conversations and their messages. Implementations
// return appErrors.ErrNotFound for unknown ids.
type ConversationStore interface {
	CreateConversation(ctx context.Context, conv Conversation) error
	GetConversation(ctx context.Context, id string) (Conversation, error)
	ListConversations(ctx context.Context, limit int) ([]ConversationSummary, error)
	DeleteConversation(ctx context.Context, id string) error
	// AppendMessage also bumps the conversation's UpdatedAt.
	AppendMessage(ctx context.Context, msg Message) error
	// ListMessages returns messages oldest first.
	ListMessages(ctx context.Context, conversationId string) ([]Message, error)
}

type DocumentStore interface {
	CreateDocument(ctx context.Context, doc commonModels.Document) error
	ListDocuments(ctx context.Context) ([]commonModels.Document, error)
	DeleteAllDocuments(ctx context.Context) (int, error)
}
