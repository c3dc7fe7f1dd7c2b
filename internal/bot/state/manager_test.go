package state

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
)

func exercise(t *testing.T, m StateManager) {
	t.Helper()
	if got := m.GetUserState(1); got != None {
		t.Errorf("Expected default state %q, got %q", None, got)
	}
	m.SetUserState(1, WaitingForWeight)
	if got := m.GetUserState(1); got != WaitingForWeight {
		t.Errorf("Expected %q, got %q", WaitingForWeight, got)
	}
	if got := m.GetUserState(2); got != None {
		t.Errorf("Expected other users to be unaffected, got %q", got)
	}

	m.SetTempData(1, "weight", "70.5")
	m.SetTempData(1, "height", "175")
	if v, ok := m.GetTempData(1, "weight"); !ok || v != "70.5" {
		t.Errorf("Expected weight 70.5, got %q %v", v, ok)
	}
	if _, ok := m.GetTempData(1, "missing"); ok {
		t.Error("Expected missing key to be absent")
	}

	m.ClearTempData(1)
	if _, ok := m.GetTempData(1, "height"); ok {
		t.Error("Expected temp data to be cleared")
	}
}

func TestManager(t *testing.T) {
	exercise(t, NewManager())
}

func TestRedisManager(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	m := NewRedisManager(client, logger.Discard())
	exercise(t, m)

	m.SetUserState(5, WaitingForHeight)
	if ttl := mr.TTL("user:5:state"); ttl != stateTTL {
		t.Errorf("Expected state ttl %v, got %v", stateTTL, ttl)
	}
	mr.FastForward(stateTTL + time.Minute)
	if got := m.GetUserState(5); got != None {
		t.Errorf("Expected expired state to reset, got %q", got)
	}
}
