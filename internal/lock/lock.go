// Package lock provides best-effort, time-bounded gates that keep replicas
// from running the same periodic job at the same moment.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a gate shared by every process that talks to the same Redis.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Redis{client: client, prefix: "consignd:gate:"}, nil
}

// TryAcquire claims key for ttl. It reports false when another holder
// claimed it within the last ttl. The claim is never released early.
func (r *Redis) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claiming %s: %w", key, err)
	}

	return ok, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Local is an in-process gate for single-replica deployments and tests.
type Local struct {
	mu      sync.Mutex
	now     func() time.Time
	claimed map[string]time.Time
}

func NewLocal() *Local {
	return &Local{now: time.Now, claimed: map[string]time.Time{}}
}

// NewLocalWithClock uses now instead of the wall clock.
func NewLocalWithClock(now func() time.Time) *Local {
	return &Local{now: now, claimed: map[string]time.Time{}}
}

func (l *Local) TryAcquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if until, ok := l.claimed[key]; ok && now.Before(until) {
		return false, nil
	}

	l.claimed[key] = now.Add(ttl)

	return true, nil
}
