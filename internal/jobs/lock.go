package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RunLock guards a job so that overlapping triggers, in this process or on
// another replica, do not run it twice
type RunLock interface {
	// TryLock returns a token when the lock was taken, ok=false when it is held
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Unlock releases the lock if it is still held with token
	Unlock(ctx context.Context, key, token string) error
}

// releaseScript deletes the key only when it still carries our token.
// KEYS[1] = lock key, ARGV[1] = token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock implements RunLock with SET NX PX on a shared Redis
type RedisLock struct {
	client redis.UniversalClient
}

// NewRedisLock creates a lock backed by client
func NewRedisLock(client redis.UniversalClient) *RedisLock {
	return &RedisLock{client: client}
}

// NewRedisClient creates a client for addr
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (l *RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLock) Unlock(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("redis unlock %s: %w", key, err)
	}
	return nil
}

// LocalLock implements RunLock in memory for single-replica deployments
type LocalLock struct {
	mu    sync.Mutex
	held  map[string]localLease
	clock func() time.Time
}

type localLease struct {
	token   string
	expires time.Time
}

// NewLocalLock creates an in-process lock. clock defaults to time.Now.
func NewLocalLock(clock func() time.Time) *LocalLock {
	if clock == nil {
		clock = time.Now
	}
	return &LocalLock{held: make(map[string]localLease), clock: clock}
}

func (l *LocalLock) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if lease, ok := l.held[key]; ok && now.Before(lease.expires) {
		return "", false, nil
	}

	token := uuid.NewString()
	l.held[key] = localLease{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

func (l *LocalLock) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lease, ok := l.held[key]; ok && lease.token == token {
		delete(l.held, key)
	}
	return nil
}
