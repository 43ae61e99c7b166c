package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "chatbot:conversation:"

// RedisStore implements Store on Redis so conversations survive restarts
// and can be shared across instances. Expiry is delegated to Redis key
// TTLs.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed conversation store. The client is
// owned by the caller.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get retrieves a conversation. Returns nil, nil if not found or expired.
func (s *RedisStore) Get(ctx context.Context, userID string) (*Conversation, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil //nolint:nilnil // Store interface specifies nil,nil for not-found
		}
		return nil, fmt.Errorf("loading conversation: %w", err)
	}

	var c Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding conversation: %w", err)
	}
	return &c, nil
}

// Put saves a conversation and refreshes its expiry.
func (s *RedisStore) Put(ctx context.Context, c *Conversation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding conversation: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+c.UserID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	return nil
}

// Delete removes a conversation.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	return nil
}

// Cleanup is a no-op: Redis evicts expired keys itself.
func (s *RedisStore) Cleanup(_ context.Context) error {
	return nil
}

// Close is a no-op: the client is owned by the caller.
func (s *RedisStore) Close() error {
	return nil
}

// Verify interface compliance.
var _ Store = (*RedisStore)(nil)
