// Package redislock provides a cross-process execution guard for scheduled
// jobs backed by redis SET NX.
package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/config"
)

// DefaultTTL bounds how long a crashed holder can block a job id.
const DefaultTTL = 10 * time.Minute

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker acquires per-key locks with a TTL.
type Locker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	token  string
}

// NewClient opens a redis client from configuration.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// New returns a Locker namespacing keys under prefix. Each Locker has its own
// owner token, so one process cannot release another's lock.
func New(client *redis.Client, prefix string, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Locker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		token:  uuid.NewString(),
	}
}

// Acquire takes the lock for key. It returns false without error when another
// holder owns it.
func (l *Locker) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.prefix+key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// Release drops the lock for key if this Locker holds it.
func (l *Locker) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + key}, l.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (l *Locker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
