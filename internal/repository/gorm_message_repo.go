package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/E-LOVE-APP/chat-service/internal/domain"
	"github.com/E-LOVE-APP/chat-service/pkg/log"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create persists a new message. The ID and SENT status are assigned here
// when the caller left them empty.
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	l := log.Ctx(ctx)

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Status == "" {
		msg.Status = domain.StatusSent
	}

	model := domain.MessageToModel(msg)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Str(log.FieldConversationID, msg.ConversationID).Msg("failed to create message in db")
		return err
	}

	msg.CreatedAt = model.CreatedAt
	l.Debug().Str(log.FieldMessageID, msg.ID).Str(log.FieldConversationID, msg.ConversationID).Msg("message created in db")
	return nil
}

// GetByID retrieves a message by ID.
func (r *GormMessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	l := log.Ctx(ctx)

	var model domain.MessageModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldMessageID, id).Msg("failed to get message by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// UpdateStatus sets a message's status.
func (r *GormMessageRepository) UpdateStatus(ctx context.Context, id string, status domain.MessageStatus) error {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldMessageID, id).Msg("failed to update message status")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	l.Debug().Str(log.FieldMessageID, id).Str("new_status", string(status)).Msg("message status updated in db")
	return nil
}

// Delete removes a message row.
func (r *GormMessageRepository) Delete(ctx context.Context, id string) error {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.MessageModel{})
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldMessageID, id).Msg("failed to delete message")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	l.Debug().Str(log.FieldMessageID, id).Msg("message deleted from db")
	return nil
}

// ListByConversation returns all messages of a conversation ascending by
// creation time, with the id as a tie-breaker for same-timestamp rows.
func (r *GormMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	l := log.Ctx(ctx)

	var models []domain.MessageModel
	result := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldConversationID, conversationID).Msg("failed to list messages from db")
		return nil, result.Error
	}

	messages := make([]domain.Message, len(models))
	for i, model := range models {
		messages[i] = *model.ToDomain()
	}
	return messages, nil
}
