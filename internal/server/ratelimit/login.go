// Package ratelimit throttles login attempts with fixed-window counters kept
// in Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps Redis failures so callers can fail open.
var ErrUnavailable = errors.New("rate limiter unavailable")

const keyPrefix = "linkkeeper:login:"

// acquireScript counts one attempt and starts the window on the first one.
var acquireScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// releaseScript gives an attempt back without resurrecting an expired key.
var releaseScript = redis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]) or '0')
if n > 0 then
	return redis.call('DECR', KEYS[1])
end
return 0
`)

// LoginLimiter reserves attempts per key before credentials are checked, so
// at most maxAttempts attempts per key get through inside one window no
// matter how many run concurrently. The window starts with the first
// attempt.
type LoginLimiter struct {
	redis       redis.UniversalClient
	maxAttempts int64
	window      time.Duration
}

func NewLoginLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{redis: client, maxAttempts: int64(maxAttempts), window: window}
}

func (l *LoginLimiter) key(k string) string {
	return keyPrefix + k
}

// Acquire counts an attempt against every key. When any key is over budget
// the attempts counted by this call are given back and common.ErrRateLimited
// is returned.
func (l *LoginLimiter) Acquire(ctx context.Context, keys ...string) error {
	taken := make([]string, 0, len(keys))
	for _, k := range keys {
		n, err := acquireScript.Run(ctx, l.redis, []string{l.key(k)}, l.window.Milliseconds()).Int64()
		if err != nil {
			_ = l.Release(ctx, taken...)
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		taken = append(taken, k)
		if n > l.maxAttempts {
			if err := l.Release(ctx, taken...); err != nil {
				return err
			}
			return common.ErrRateLimited
		}
	}
	return nil
}

// Release gives back one attempt per key, used when an attempt succeeded.
func (l *LoginLimiter) Release(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := releaseScript.Run(ctx, l.redis, []string{l.key(k)}).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = l.key(k)
	}
	if err := l.redis.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
