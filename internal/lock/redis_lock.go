package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/utils"

	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

const (
	defaultLockTTL      = 5 * time.Second
	defaultRetryBackoff = 10 * time.Millisecond
	defaultLockPrefix   = "auctions:lock"
)

// RedisLocker is a Locker shared by every instance that talks to the same Redis.
// The key expires after ttl so a crashed holder cannot block an auction forever.
type RedisLocker struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	backoff time.Duration
}

// NewRedisLocker creates a Redis-backed Locker
func NewRedisLocker(addr, password, prefix string, ttl time.Duration) (*RedisLocker, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis locker addr is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultLockPrefix
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix:  prefix,
		ttl:     ttl,
		backoff: defaultRetryBackoff,
	}, nil
}

// Lock spins with a short backoff until the key is acquired or ctx is done
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)
	token := utils.GenerateEventID()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("lock %s: %w: %w", key, auctionerrors.ErrLockNotAcquired, ctxErr)
			}
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock %s: %w: %w", key, auctionerrors.ErrLockNotAcquired, ctx.Err())
		case <-time.After(l.backoff):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
			utils.Warn("redis lock release failed", map[string]any{"key": redisKey, "error": err.Error()})
		}
	}, nil
}

// Close closes the Redis connection
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
