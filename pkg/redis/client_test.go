package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/haani-backend/pkg/config"
)

func TestSetNXOnlyOnce(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.LockKey("safety-window-closer")

	ok, err := client.SetNX(ctx, key, "owner-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first SetNX to win, got %v, %v", ok, err)
	}
	ok, err = client.SetNX(ctx, key, "owner-b", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second SetNX to lose, got %v, %v", ok, err)
	}

	owner, err := client.Get(ctx, key)
	if err != nil || owner != "owner-a" {
		t.Fatalf("expected owner-a, got %q, %v", owner, err)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, key); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("admin", "abc"); got != "haani:idempotency:admin:abc" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.LockKey("referral-discount-finalizer"); got != "haani:lock:referral-discount-finalizer" {
		t.Fatalf("unexpected lock key %s", got)
	}
	if got := client.IdempotencyKey("admin", ""); got != "haani:idempotency:admin" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestConfigured(t *testing.T) {
	if Configured(config.RedisConfig{}) {
		t.Fatal("empty config must not count as configured")
	}
	if !Configured(config.RedisConfig{URL: "redis://localhost:6379/0"}) {
		t.Fatal("url should count as configured")
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if _, err := client.SetNX(context.Background(), "k", "v", time.Second); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close() on uninitialized client = %v", err)
	}
}

type mockCmdable struct {
	data map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
