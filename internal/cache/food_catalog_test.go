package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
	"github.com/vladimiradmaev/meal-planner/internal/memstore"
)

func newCache(t *testing.T, next *memstore.Catalog) (*FoodCatalog, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewFoodCatalog(next, client, time.Hour, logger.Discard()), mr
}

var fiber = 2.4

var foods = []domain.FoodNutrientRecord{
	{ID: 1, Name: "Apple", Aliases: []string{"green apple"}, Per100g: domain.Nutrients{Calories: 52, Carbs: 14, Fiber: &fiber}},
	{ID: 2, Name: "Banana", Per100g: domain.Nutrients{Calories: 89, Carbs: 23}},
}

func TestResolveManyReadThrough(t *testing.T) {
	next := memstore.NewCatalog(foods...)
	c, mr := newCache(t, next)
	ctx := context.Background()

	got, err := c.ResolveMany(ctx, []uint{1, 2})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(got) != 2 || next.Calls != 1 {
		t.Fatalf("Expected 2 records from one backend call, got %d records, %d calls", len(got), next.Calls)
	}
	if !mr.Exists("food:1") || !mr.Exists("food:2") {
		t.Error("Expected records to be written to redis")
	}
	if ttl := mr.TTL("food:1"); ttl != time.Hour {
		t.Errorf("Expected 1h ttl, got %v", ttl)
	}

	got, err = c.ResolveMany(ctx, []uint{1, 2})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if next.Calls != 1 {
		t.Errorf("Expected cache hits to skip the backend, got %d calls", next.Calls)
	}
	apple := got[1]
	if apple.Name != "Apple" || apple.Per100g.Fiber == nil || *apple.Per100g.Fiber != 2.4 || got[2].Per100g.Fiber != nil {
		t.Errorf("Unexpected cached record %+v", apple)
	}
}

func TestResolveManyPartialHit(t *testing.T) {
	next := memstore.NewCatalog(foods...)
	c, _ := newCache(t, next)
	ctx := context.Background()

	if _, err := c.ResolveMany(ctx, []uint{1}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := c.ResolveMany(ctx, []uint{1, 2, 3}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	last := next.Queried[len(next.Queried)-1]
	if len(last) != 2 || last[0] != 2 || last[1] != 3 {
		t.Errorf("Expected only misses [2 3] to reach the backend, got %v", last)
	}
}

func TestResolveManyRedisDown(t *testing.T) {
	next := memstore.NewCatalog(foods...)
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { client.Close() })
	c := NewFoodCatalog(next, client, time.Hour, logger.Discard())

	got, err := c.ResolveMany(context.Background(), []uint{1, 2})
	if err != nil {
		t.Fatalf("Expected redis outage to be tolerated, got %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 records from backend, got %d", len(got))
	}
}

func TestResolveManyCorruptEntry(t *testing.T) {
	next := memstore.NewCatalog(foods...)
	c, mr := newCache(t, next)
	mr.Set("food:1", "{not json")

	got, err := c.ResolveMany(context.Background(), []uint{1})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got[1].Name != "Apple" || next.Calls != 1 {
		t.Errorf("Expected corrupt entry to be refetched, got %+v after %d calls", got[1], next.Calls)
	}
}

func TestInvalidate(t *testing.T) {
	next := memstore.NewCatalog(foods...)
	c, mr := newCache(t, next)
	ctx := context.Background()

	if _, err := c.ResolveMany(ctx, []uint{1, 2}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := c.Invalidate(ctx, 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if mr.Exists("food:1") || !mr.Exists("food:2") {
		t.Error("Expected only food:1 to be dropped")
	}
}
