package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
)

const (
	stateTTL  = 24 * time.Hour
	opTimeout = 3 * time.Second
)

// RedisManager keeps conversation state in redis so it survives restarts
type RedisManager struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisManager uses an already connected client
func NewRedisManager(client *redis.Client, log *slog.Logger) *RedisManager {
	return &RedisManager{client: client, logger: logger.OrDefault(log)}
}

func stateKey(userID int64) string { return fmt.Sprintf("user:%d:state", userID) }
func tempKey(userID int64) string  { return fmt.Sprintf("user:%d:temp", userID) }

// SetUserState sets the state for a user with TTL
func (m *RedisManager) SetUserState(userID int64, state string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := m.client.Set(ctx, stateKey(userID), state, stateTTL).Err(); err != nil {
		m.logger.Warn("Failed to store user state", "user_id", userID, "error", err)
	}
}

// GetUserState gets the state for a user, None when absent or on error
func (m *RedisManager) GetUserState(userID int64) string {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	state, err := m.client.Get(ctx, stateKey(userID)).Result()
	if err == redis.Nil {
		return None
	}
	if err != nil {
		m.logger.Warn("Failed to load user state", "user_id", userID, "error", err)
		return None
	}
	return state
}

// SetTempData stores one wizard answer in the user's hash
func (m *RedisManager) SetTempData(userID int64, key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	pipe := m.client.TxPipeline()
	pipe.HSet(ctx, tempKey(userID), key, value)
	pipe.Expire(ctx, tempKey(userID), stateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		m.logger.Warn("Failed to store temp data", "user_id", userID, "key", key, "error", err)
	}
}

// GetTempData gets temporary data for a user
func (m *RedisManager) GetTempData(userID int64, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	value, err := m.client.HGet(ctx, tempKey(userID), key).Result()
	if err != nil {
		return "", false
	}
	return value, true
}

// ClearTempData clears all temporary data for a user
func (m *RedisManager) ClearTempData(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	m.client.Del(ctx, tempKey(userID))
}
