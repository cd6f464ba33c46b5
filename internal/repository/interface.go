package repository

import (
	"context"
	"errors"

	"github.com/E-LOVE-APP/chat-service/internal/domain"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationDeleted  = errors.New("conversation is deleted")
	ErrMessageNotFound      = errors.New("message not found")
)

// ConversationRepository defines the interface for conversation persistence.
type ConversationRepository interface {
	// Create stores a conversation for the given unordered participant
	// pair. It is idempotent: if a live conversation for the pair already
	// exists it is returned instead of creating a new row. A soft-deleted
	// pair yields ErrConversationDeleted.
	Create(ctx context.Context, userFirstID, userSecondID string) (*domain.Conversation, error)
	// GetByID retrieves a conversation. Soft-deleted conversations are
	// reported as ErrConversationNotFound.
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	// Exists reports whether a conversation row exists at all, soft-deleted
	// or not. Used by history listings, which outlive soft deletion.
	Exists(ctx context.Context, id string) (bool, error)
	// SoftDelete marks a conversation deleted with a deletion timestamp.
	SoftDelete(ctx context.Context, id string) error
	// HardDelete removes the conversation row and cascades to its messages.
	HardDelete(ctx context.Context, id string) error
}

// MessageRepository defines the interface for message persistence.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	UpdateStatus(ctx context.Context, id string, status domain.MessageStatus) error
	Delete(ctx context.Context, id string) error
	// ListByConversation returns all messages of a conversation ascending
	// by creation time.
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
}
