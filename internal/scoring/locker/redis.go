package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix         = "scoring:lock:"
	defaultRetryDelay = 25 * time.Millisecond
)

// ErrLockNotHeld is returned when a release finds the lock expired or taken over.
var ErrLockNotHeld = errors.New("lock not held")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared by every process using the same Redis.
// A lock expires after ttl if its holder dies.
type RedisLocker struct {
	client     redis.UniversalClient
	ttl        time.Duration
	retryDelay time.Duration
	onRelease  func(key string, err error)
}

// NewRedisLocker creates a RedisLocker. onRelease, if set, observes release failures.
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, onRelease func(key string, err error)) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, retryDelay: defaultRetryDelay, onRelease: onRelease}
}

// Lock polls SET NX until the key is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryDelay)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		err := l.release(context.WithoutCancel(ctx), redisKey, token)
		if err != nil && l.onRelease != nil {
			l.onRelease(key, err)
		}
	}, nil
}

func (l *RedisLocker) release(ctx context.Context, redisKey, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}
