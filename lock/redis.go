package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Noah-Huppert/golog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes a lease only if it is still held by the caller's token.
// KEYS[1] = lease key
// ARGV[1] = token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared by every replica of the service. Locks are
// leases which expire after TTL, so a crashed holder cannot block a key forever.
type RedisLocker struct {
	client *redis.Client

	// Logger logs failures to release leases
	Logger golog.Logger

	// TTL of a lease, must exceed the longest expected submission
	TTL time.Duration

	// RetryInterval is how long to wait between attempts to take a held lease
	RetryInterval time.Duration
}

// NewRedisLocker creates a Redis backed Locker
func NewRedisLocker(client *redis.Client, logger golog.Logger, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:        client,
		Logger:        logger,
		TTL:           ttl,
		RetryInterval: 100 * time.Millisecond,
	}
}

// leaseKey is the Redis key of the lease for key
func leaseKey(key string) string {
	return fmt.Sprintf("submission-lock:%s", key)
}

// Acquire implements Locker
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := leaseKey(key)
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to take lease on \"%s\": %w", key, err)
		}

		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.RetryInterval):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The request context may already be done, release on a fresh one
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err()
			if err != nil {
				l.Logger.Errorf("failed to release lease on \"%s\", it will expire "+
					"after %s: %s", key, l.TTL, err.Error())
			}
		})
	}, nil
}
