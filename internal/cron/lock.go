package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Minute

// Lock coordinates exclusive runs of a job across workers. Acquire returns a
// token that must be handed back to Release.
type Lock interface {
	Acquire(ctx context.Context, job string) (token string, ok bool, err error)
	Release(ctx context.Context, job, token string) error
}

// redisStore defines the operations used by RedisLock.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(job string) string
}

// RedisLock implements Lock using Redis SETNX + TTL, one key per job.
type RedisLock struct {
	client redisStore
	ttl    time.Duration
}

// NewRedisLock constructs a Redis-backed lock.
func NewRedisLock(client redisStore, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{client: client, ttl: ttl}, nil
}

// Acquire tries to own the job's lock for the configured TTL.
func (l *RedisLock) Acquire(ctx context.Context, job string) (string, bool, error) {
	if job == "" {
		return "", false, errors.New("job name is required")
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.client.LockKey(job), token, l.ttl)
	if err != nil {
		return "", false, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock only if token still owns it. An expired lock that
// another worker picked up is left alone.
func (l *RedisLock) Release(ctx context.Context, job, token string) error {
	if token == "" {
		return nil
	}
	key := l.client.LockKey(job)
	value, err := l.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != token {
		return nil
	}
	if err := l.client.Del(ctx, key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	return nil
}

// LocalLock serializes runs within one process. It is the fallback when Redis
// is not configured and gives no protection across replicas.
type LocalLock struct {
	mu     sync.Mutex
	owners map[string]string
}

func NewLocalLock() *LocalLock {
	return &LocalLock{owners: map[string]string{}}
}

func (l *LocalLock) Acquire(ctx context.Context, job string) (string, bool, error) {
	if job == "" {
		return "", false, errors.New("job name is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.owners[job]; held {
		return "", false, nil
	}
	token := uuid.NewString()
	l.owners[job] = token
	return token, true, nil
}

func (l *LocalLock) Release(ctx context.Context, job, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owners[job] == token {
		delete(l.owners, job)
	}
	return nil
}
