package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/E-LOVE-APP/chat-service/internal/config"
	"github.com/E-LOVE-APP/chat-service/internal/domain"
)

// RedisConversationCache implements ConversationCache backed by Redis.
type RedisConversationCache struct {
	client *redis.Client
	prefix string
}

// NewRedisConversationCache connects to Redis and returns a cache.
func NewRedisConversationCache(cfg config.RedisConfig, prefix string) (*RedisConversationCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisConversationCache{
		client: client,
		prefix: prefix,
	}, nil
}

func (c *RedisConversationCache) BuildKeyByID(conversationID string) string {
	return fmt.Sprintf("%s:id:%s", c.prefix, conversationID)
}

func (c *RedisConversationCache) Get(ctx context.Context, key string) (*domain.Conversation, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var conversation domain.Conversation
	if err := json.Unmarshal(data, &conversation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return &conversation, nil
}

func (c *RedisConversationCache) Set(ctx context.Context, key string, conversation *domain.Conversation, ttl time.Duration) error {
	data, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

func (c *RedisConversationCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}

	return nil
}

func (c *RedisConversationCache) Close() error {
	return c.client.Close()
}
