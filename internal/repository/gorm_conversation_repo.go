package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/E-LOVE-APP/chat-service/internal/domain"
	"github.com/E-LOVE-APP/chat-service/pkg/log"
)

// GormConversationRepository implements ConversationRepository using GORM.
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates a new GORM-based conversation repository.
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

// Create stores a conversation for the canonicalized participant pair.
// Creating the same unordered pair twice returns the original conversation.
func (r *GormConversationRepository) Create(ctx context.Context, userFirstID, userSecondID string) (*domain.Conversation, error) {
	l := log.Ctx(ctx)

	first, second := domain.CanonicalPair(userFirstID, userSecondID)

	var created *domain.ConversationModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.ConversationModel
		result := tx.First(&existing, "user_first_id = ? AND user_second_id = ?", first, second)
		if result.Error == nil {
			if existing.IsDeleted {
				return ErrConversationDeleted
			}
			created = &existing
			return nil
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		model := &domain.ConversationModel{
			ID:           uuid.New().String(),
			UserFirstID:  first,
			UserSecondID: second,
		}
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		created = model
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrConversationDeleted) {
			l.Error().Err(err).Msg("failed to create conversation in db")
		}
		return nil, err
	}

	l.Debug().Str(log.FieldConversationID, created.ID).Msg("conversation ready in db")
	return created.ToDomain(), nil
}

// GetByID retrieves a live conversation by ID.
func (r *GormConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	l := log.Ctx(ctx)

	var model domain.ConversationModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldConversationID, id).Msg("failed to get conversation by id")
		return nil, result.Error
	}
	if model.IsDeleted {
		return nil, ErrConversationNotFound
	}
	return model.ToDomain(), nil
}

// Exists reports whether a conversation row exists, deleted or not.
func (r *GormConversationRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.ConversationModel{}).
		Where("id = ?", id).
		Count(&count)
	if result.Error != nil {
		lg := log.Ctx(ctx)
		lg.Error().Err(result.Error).Str(log.FieldConversationID, id).Msg("failed to check conversation existence")
		return false, result.Error
	}
	return count > 0, nil
}

// SoftDelete marks a conversation as deleted with a deletion timestamp.
func (r *GormConversationRepository) SoftDelete(ctx context.Context, id string) error {
	l := log.Ctx(ctx)

	now := time.Now()
	result := r.db.WithContext(ctx).Model(&domain.ConversationModel{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
		})
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldConversationID, id).Msg("failed to soft-delete conversation")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	l.Debug().Str(log.FieldConversationID, id).Msg("conversation soft-deleted in db")
	return nil
}

// HardDelete removes a conversation row and all messages referencing it.
func (r *GormConversationRepository) HardDelete(ctx context.Context, id string) error {
	l := log.Ctx(ctx)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&domain.MessageModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&domain.ConversationModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConversationNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrConversationNotFound) {
			l.Error().Err(err).Str(log.FieldConversationID, id).Msg("failed to hard-delete conversation")
		}
		return err
	}
	l.Debug().Str(log.FieldConversationID, id).Msg("conversation and messages deleted from db")
	return nil
}
