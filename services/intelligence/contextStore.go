// File: services/intelligence/contextStore.go
package ai

import (
	"context"
	"encoding/json"
	"time"

	"sherpa/models"

	"github.com/go-redis/redis/v8"
)

const aiContextPrefix = "ai:ctx:"

// historyWindow bounds how many past exchanges are replayed into the prompt.
const historyWindow = 5

type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, userID string) (*models.AIContext, error) {
	key := aiContextPrefix + userID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return &models.AIContext{}, nil
	}
	if err != nil {
		return nil, err
	}
	var aiCtx models.AIContext
	if err := json.Unmarshal([]byte(data), &aiCtx); err != nil {
		return nil, err
	}
	return &aiCtx, nil
}

func (s *RedisContextStore) Set(ctx context.Context, userID string, aiCtx *models.AIContext) error {
	key := aiContextPrefix + userID
	b, err := json.Marshal(models.AIContext{History: trimHistory(aiCtx.History)})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

// trimHistory returns the most recent window of exchanges. The input slice
// is never mutated or aliased into the result.
func trimHistory(history []models.AIExchange) []models.AIExchange {
	if len(history) <= historyWindow {
		return history
	}
	out := make([]models.AIExchange, historyWindow)
	copy(out, history[len(history)-historyWindow:])
	return out
}

func (s *RedisContextStore) Clear(ctx context.Context, userID string) error {
	key := aiContextPrefix + userID
	return s.client.Del(ctx, key).Err()
}
