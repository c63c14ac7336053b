package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quiz-poll/internal/cache"
	"quiz-poll/internal/domain"
	"quiz-poll/internal/util"

	"github.com/redis/go-redis/v9"
)

// ErrLockLost is returned on release when the lock expired or was taken over.
var ErrLockLost = errors.New("lock expired before release")

// releaseScript deletes the lock key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements domain.Locker with SET NX PX and a token-checked release.
type RedisLocker struct {
	client     *redis.Client
	attempts   int
	retryDelay time.Duration
	newToken   func() string
}

// NewRedisLocker creates a new instance of RedisLocker.
// It expects a connected *redis.Client.
func NewRedisLocker(client *redis.Client, attempts int, retryDelay time.Duration) *RedisLocker {
	if attempts < 1 {
		attempts = 1
	}
	return &RedisLocker{
		client:     client,
		attempts:   attempts,
		retryDelay: retryDelay,
		newToken:   util.NewULID,
	}
}

// Acquire implements domain.Locker.
func (r *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error) {
	key := cache.LockKey(name)
	token := r.newToken()

	for attempt := 1; ; attempt++ {
		ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if attempt >= r.attempts {
			return nil, domain.ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.retryDelay):
		}
	}

	release := func(ctx context.Context) error {
		deleted, err := releaseScript.Run(ctx, r.client, []string{key}, token).Int()
		if err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		if deleted == 0 {
			return ErrLockLost
		}
		return nil
	}
	return release, nil
}

var _ domain.Locker = (*RedisLocker)(nil)
