// Package cache puts a redis read-through layer in front of the food catalog.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
)

const keyPrefix = "food:"

// FoodCatalog serves records from redis and falls back to next on a miss.
// Redis failures are logged and never fail a lookup.
type FoodCatalog struct {
	next   domain.FoodCatalog
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewFoodCatalog(next domain.FoodCatalog, client *redis.Client, ttl time.Duration, log *slog.Logger) *FoodCatalog {
	return &FoodCatalog{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.OrDefault(log),
	}
}

func foodKey(id uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

// ResolveMany issues one MGET, resolves the misses through next in one call,
// and writes them back in a single pipeline.
func (c *FoodCatalog) ResolveMany(ctx context.Context, foodIDs []uint) (map[uint]domain.FoodNutrientRecord, error) {
	out := make(map[uint]domain.FoodNutrientRecord, len(foodIDs))
	if len(foodIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(foodIDs))
	for i, id := range foodIDs {
		keys[i] = foodKey(id)
	}

	missing := foodIDs
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("Food cache read failed", "error", err, "keys", len(keys))
	} else {
		missing = make([]uint, 0, len(foodIDs))
		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				missing = append(missing, foodIDs[i])
				continue
			}
			var rec domain.FoodNutrientRecord
			if err := json.Unmarshal([]byte(raw), &rec); err != nil {
				c.logger.Warn("Dropping corrupt food cache entry", "key", keys[i], "error", err)
				missing = append(missing, foodIDs[i])
				continue
			}
			out[foodIDs[i]] = rec
		}
	}

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := c.next.ResolveMany(ctx, missing)
	if err != nil {
		return nil, err
	}

	pipe := c.client.Pipeline()
	for id, rec := range fetched {
		out[id] = rec
		data, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		pipe.Set(ctx, foodKey(id), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("Food cache write failed", "error", err, "records", len(fetched))
	}

	c.logger.Debug("Food catalog lookup",
		"requested", len(foodIDs),
		"cache_hits", len(foodIDs)-len(missing),
		"fetched", len(fetched))
	return out, nil
}

// Invalidate drops cached records, for example after a food was edited
func (c *FoodCatalog) Invalidate(ctx context.Context, foodIDs ...uint) error {
	if len(foodIDs) == 0 {
		return nil
	}
	keys := make([]string, len(foodIDs))
	for i, id := range foodIDs {
		keys[i] = foodKey(id)
	}
	return c.client.Del(ctx, keys...).Err()
}
