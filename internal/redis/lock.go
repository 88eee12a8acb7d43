package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("archive lock not acquired")
)

// Locker guards archive runs so two workers never reconcile the same
// calendar at the same time.
type Locker interface {
	WithArchiveLock(ctx context.Context, userID, calendar string, fn func(ctx context.Context) error) error
}

type redisArchiveLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisArchiveLocker creates a locker keyed per user and calendar.
func NewRedisArchiveLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisArchiveLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisArchiveLocker) WithArchiveLock(ctx context.Context, userID, calendar string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:archive:%s:%s", userID, calendar)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire archive lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisArchiveLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release archive lock: %w", err)
	}
	return nil
}
