package service

import (
	"context"
	"errors"
	"time"

	"github.com/E-LOVE-APP/chat-service/internal/audit"
	"github.com/E-LOVE-APP/chat-service/internal/cache"
	"github.com/E-LOVE-APP/chat-service/internal/domain"
	"github.com/E-LOVE-APP/chat-service/internal/repository"
	"github.com/E-LOVE-APP/chat-service/pkg/log"
)

// conversationServiceImpl implements ConversationService.
type conversationServiceImpl struct {
	repo     repository.ConversationRepository
	cache    cache.ConversationCache
	cacheTTL time.Duration
}

// NewConversationService creates a new conversation service. The cache may
// be nil, in which case every lookup hits the repository.
func NewConversationService(repo repository.ConversationRepository, convCache cache.ConversationCache, cacheTTL time.Duration) ConversationService {
	return &conversationServiceImpl{
		repo:     repo,
		cache:    convCache,
		cacheTTL: cacheTTL,
	}
}

// CreateConversation creates (or returns) the conversation for a pair.
func (s *conversationServiceImpl) CreateConversation(ctx context.Context, userFirstID, userSecondID string) (*domain.ConversationResponse, error) {
	if userFirstID == "" || userSecondID == "" {
		return nil, ErrMissingFields
	}
	if userFirstID == userSecondID {
		return nil, ErrSameParticipants
	}

	conversation, err := s.repo.Create(ctx, userFirstID, userSecondID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationDeleted) {
			return nil, ErrConversationDeleted
		}
		return nil, err
	}

	audit.Log(ctx, audit.ActionCreateConversation, conversation.ID, "conversation created")

	resp := conversation.ToResponse()
	return &resp, nil
}

// GetConversation retrieves a live conversation, read-through cached.
func (s *conversationServiceImpl) GetConversation(ctx context.Context, id string) (*domain.ConversationResponse, error) {
	conversation, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := conversation.ToResponse()
	return &resp, nil
}

// DeleteConversation soft-deletes a conversation and drops its cache entry.
func (s *conversationServiceImpl) DeleteConversation(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return ErrConversationNotFound
		}
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, s.cache.BuildKeyByID(id)); err != nil {
			lg := log.Ctx(ctx)
			lg.Warn().Err(err).Str(log.FieldConversationID, id).Msg("failed to invalidate conversation cache")
		}
	}

	audit.Log(ctx, audit.ActionDeleteConversation, id, "conversation soft-deleted")
	return nil
}

func (s *conversationServiceImpl) lookup(ctx context.Context, id string) (*domain.Conversation, error) {
	l := log.Ctx(ctx)

	if s.cache != nil {
		key := s.cache.BuildKeyByID(id)
		if cached, err := s.cache.Get(ctx, key); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			l.Warn().Err(err).Str(log.FieldConversationID, id).Msg("conversation cache read failed")
		}
	}

	conversation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		key := s.cache.BuildKeyByID(id)
		if err := s.cache.Set(ctx, key, conversation, s.cacheTTL); err != nil {
			l.Warn().Err(err).Str(log.FieldConversationID, id).Msg("conversation cache write failed")
		}
	}

	return conversation, nil
}
