package service

import (
	"context"
	"time"

	"github.com/edushare/auth/ports"
)

const rateLimitPrefix = "rate-limit"

// RateLimiter counts attempts per fully-resolved key (action + identity,
// e.g. "signin:alice@x.com") in fixed windows against the backing store.
// It is independent of sessions and holds no state of its own.
type RateLimiter struct {
	store  ports.Store
	window time.Duration
}

// NewRateLimiter creates a limiter with the configured cooldown window.
func NewRateLimiter(store ports.Store, window time.Duration) *RateLimiter {
	return &RateLimiter{store: store, window: window}
}

// TryAcquire increments the counter for key and reports whether the attempt
// is allowed. The first increment opens a window by arming the TTL. An
// attempt over the limit re-arms the TTL before denying: the lockout
// extends from the offending attempt, not from the original window start.
//
// Increment and TTL arming are two store operations, not one transaction.
// A racing caller can at worst re-arm an already-armed TTL, which degrades
// to a slightly longer window, never to a wrong allow.
func (l *RateLimiter) TryAcquire(ctx context.Context, key string, limit int) (bool, error) {
	counterKey := rateLimitPrefix + ":" + key

	count, err := l.store.Incr(ctx, counterKey)
	if err != nil {
		return false, err
	}

	switch {
	case count == 1:
		if err := l.store.Expire(ctx, counterKey, l.window); err != nil {
			return false, err
		}
		return true, nil
	case count <= int64(limit):
		return true, nil
	default:
		if err := l.store.Expire(ctx, counterKey, l.window); err != nil {
			return false, err
		}
		return false, nil
	}
}

// Reset deletes the counter immediately. Idempotent; intended for
// administrative overrides.
func (l *RateLimiter) Reset(ctx context.Context, key string) error {
	return l.store.Del(ctx, rateLimitPrefix+":"+key)
}
