package utils

import (
	"context"
	"fmt"
	"time"

	"barberhive/domain"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const lockKeyPrefix = "booking-lock:"

// releaseScript deletes the lock only if it still carries our token, so a
// holder whose TTL expired cannot release someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisShopLocker serializes booking writes per shop across server instances.
type RedisShopLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewRedisShopLocker builds a locker. ttl bounds how long a crashed holder can
// block a shop; wait bounds how long a caller polls before giving up.
func NewRedisShopLocker(client *redis.Client, ttl, wait time.Duration) *RedisShopLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if wait <= 0 {
		wait = 3 * time.Second
	}
	return &RedisShopLocker{client: client, ttl: ttl, wait: wait, retry: 25 * time.Millisecond}
}

// Lock blocks until the shop's lock is held, the wait budget runs out, or ctx
// is done. The returned func releases the lock.
func (l *RedisShopLocker) Lock(ctx context.Context, shopID string) (func(), error) {
	key := lockKeyPrefix + shopID
	token := uuid.New().String()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("acquire booking lock for shop %s: %w", shopID, err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("shop %s: %w", shopID, domain.ErrLockTimeout)
		case <-ticker.C:
		}
	}
}

func (l *RedisShopLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		GetLogger().Warn("failed to release booking lock", zap.String("key", key), zap.Error(err))
	}
}
