package cache

import (
	"context"
	"errors"
	"time"

	"github.com/E-LOVE-APP/chat-service/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// ConversationCache caches conversation lookups by id.
type ConversationCache interface {
	BuildKeyByID(conversationID string) string
	Get(ctx context.Context, key string) (*domain.Conversation, error)
	Set(ctx context.Context, key string, conversation *domain.Conversation, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
