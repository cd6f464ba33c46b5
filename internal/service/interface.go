package service

import (
	"context"

	"github.com/E-LOVE-APP/chat-service/internal/domain"
)

// ConversationService defines conversation business logic.
type ConversationService interface {
	// CreateConversation creates a conversation between two distinct users.
	// Creating the same unordered pair twice returns the existing
	// conversation.
	CreateConversation(ctx context.Context, userFirstID, userSecondID string) (*domain.ConversationResponse, error)
	GetConversation(ctx context.Context, id string) (*domain.ConversationResponse, error)
	// DeleteConversation soft-deletes a conversation. Message history
	// survives until explicitly removed.
	DeleteConversation(ctx context.Context, id string) error
}

// MessageService defines message business logic. It is the persistence
// collaborator of the broker: SendMessage validates and stores but does not
// deliver.
type MessageService interface {
	SendMessage(ctx context.Context, conversationID, senderID, recipientID, content string) (*domain.Message, error)
	UpdateStatus(ctx context.Context, messageID, status string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, messageID string) error
	// ListMessages returns the full ascending history of a conversation,
	// including soft-deleted conversations (history stays readable until
	// messages are deleted).
	ListMessages(ctx context.Context, conversationID string) (*domain.ListMessagesResponse, error)
}
