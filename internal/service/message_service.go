package service

import (
	"context"
	"errors"

	"github.com/E-LOVE-APP/chat-service/internal/audit"
	"github.com/E-LOVE-APP/chat-service/internal/domain"
	"github.com/E-LOVE-APP/chat-service/internal/repository"
	"github.com/E-LOVE-APP/chat-service/pkg/log"
)

// messageServiceImpl implements MessageService.
type messageServiceImpl struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
}

// NewMessageService creates a new message service.
func NewMessageService(conversations repository.ConversationRepository, messages repository.MessageRepository) MessageService {
	return &messageServiceImpl{
		conversations: conversations,
		messages:      messages,
	}
}

// SendMessage validates the send request against the conversation and
// persists the message with SENT status. Validation order: conversation
// must exist and be live, sender must be a participant, recipient (when
// given) must be the other participant.
func (s *messageServiceImpl) SendMessage(ctx context.Context, conversationID, senderID, recipientID, content string) (*domain.Message, error) {
	l := log.Ctx(ctx)

	if conversationID == "" || senderID == "" || content == "" {
		return nil, ErrMissingFields
	}

	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	if !conversation.HasParticipant(senderID) {
		l.Warn().
			Str(log.FieldConversationID, conversationID).
			Str(log.FieldSenderID, senderID).
			Msg("sender does not belong to conversation")
		return nil, ErrSenderNotParticipant
	}

	if recipientID != "" {
		other, _ := conversation.OtherParticipant(senderID)
		if recipientID != other {
			l.Warn().
				Str(log.FieldConversationID, conversationID).
				Str(log.FieldRecipientID, recipientID).
				Msg("recipient does not belong to conversation")
			return nil, ErrRecipientNotParticipant
		}
	}

	msg := &domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        content,
		Status:         domain.StatusSent,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

// UpdateStatus moves a message forward on the status ladder.
func (s *messageServiceImpl) UpdateStatus(ctx context.Context, messageID, status string) (*domain.Message, error) {
	if status == "" {
		return nil, ErrMissingFields
	}

	newStatus, ok := domain.ParseStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	if !domain.CanTransition(msg.Status, newStatus) {
		return nil, ErrStatusRegression
	}

	if msg.Status != newStatus {
		if err := s.messages.UpdateStatus(ctx, messageID, newStatus); err != nil {
			if errors.Is(err, repository.ErrMessageNotFound) {
				return nil, ErrMessageNotFound
			}
			return nil, err
		}
		msg.Status = newStatus
	}

	return msg, nil
}

// DeleteMessage removes a single message.
func (s *messageServiceImpl) DeleteMessage(ctx context.Context, messageID string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionDeleteMessage, msg.ConversationID, messageID, "message deleted")
	return nil
}

// ListMessages returns the full ascending history of a conversation.
// Soft-deleted conversations keep their history readable; only a
// conversation id that never existed yields not-found.
func (s *messageServiceImpl) ListMessages(ctx context.Context, conversationID string) (*domain.ListMessagesResponse, error) {
	exists, err := s.conversations.Exists(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrConversationNotFound
	}

	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	responses := make([]domain.MessageResponse, len(messages))
	for i := range messages {
		responses[i] = messages[i].ToResponse()
	}

	return &domain.ListMessagesResponse{
		ConversationID: conversationID,
		Messages:       responses,
		Total:          len(responses),
	}, nil
}
