package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrScheduleLocked is returned when another request held the lock for the whole wait budget.
var ErrScheduleLocked = errors.New("schedule is locked by another request")

// unlockScript deletes the key only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const (
	lockRetryMin = 10 * time.Millisecond
	lockRetryMax = 200 * time.Millisecond
)

// RedisScheduleLocker serializes writers of one provider-day across API instances.
type RedisScheduleLocker struct {
	client  *redis.Client
	ttl     time.Duration
	maxWait time.Duration
}

// NewRedisScheduleLocker waits up to ttl for a held key, which is as long as a holder can keep it.
func NewRedisScheduleLocker(client *redis.Client, ttl time.Duration) *RedisScheduleLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisScheduleLocker{client: client, ttl: ttl, maxWait: ttl}
}

// WithMaxWait bounds how long WithLock polls a held key. Zero means a single attempt.
func (l *RedisScheduleLocker) WithMaxWait(d time.Duration) *RedisScheduleLocker {
	if d < 0 {
		d = 0
	}
	l.maxWait = d
	return l
}

// WithLock runs fn while holding key. A held key is polled with backoff; ErrScheduleLocked is
// returned once the wait budget is spent.
func (l *RedisScheduleLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lockKey := ScheduleLockPrefix + key
	token := uuid.NewString()

	if err := l.acquire(ctx, lockKey, token); err != nil {
		return err
	}
	defer func() {
		// Release even if the request context is already cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := unlockScript.Run(releaseCtx, l.client, []string{lockKey}, token).Err(); err != nil && err != redis.Nil {
			GetLogger().Warn("failed to release schedule lock", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	return fn(ctx)
}

func (l *RedisScheduleLocker) acquire(ctx context.Context, lockKey, token string) error {
	deadline := time.Now().Add(l.maxWait)
	backoff := lockRetryMin
	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire schedule lock: %w", err)
		}
		if ok {
			return nil
		}

		wait := time.Until(deadline)
		if wait <= 0 {
			return ErrScheduleLocked
		}
		if backoff < wait {
			wait = backoff
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("waiting for schedule lock: %w", ctx.Err())
		case <-timer.C:
		}
		if backoff *= 2; backoff > lockRetryMax {
			backoff = lockRetryMax
		}
	}
}
