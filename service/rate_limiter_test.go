package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	ctx := context.Background()
	kv, _ := newRedisStore(t)
	limiter := NewRateLimiter(kv, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, err := limiter.TryAcquire(ctx, "signin:a@x.com", 3)
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i+1)
	}

	allowed, err := limiter.TryAcquire(ctx, "signin:a@x.com", 3)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRateLimiterWindowExpires(t *testing.T) {
	ctx := context.Background()
	kv, mr := newRedisStore(t)
	limiter := NewRateLimiter(kv, time.Minute)

	for i := 0; i < 4; i++ {
		_, err := limiter.TryAcquire(ctx, "signin:a@x.com", 3)
		require.NoError(t, err)
	}

	mr.FastForward(61 * time.Second)

	allowed, err := limiter.TryAcquire(ctx, "signin:a@x.com", 3)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiterOverflowReArmsWindow(t *testing.T) {
	ctx := context.Background()
	kv, mr := newRedisStore(t)
	limiter := NewRateLimiter(kv, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := limiter.TryAcquire(ctx, "signin:a@x.com", 3)
		require.NoError(t, err)
	}

	// Most of the window passes, then an over-limit attempt lands.
	mr.FastForward(45 * time.Second)
	allowed, err := limiter.TryAcquire(ctx, "signin:a@x.com", 3)
	require.NoError(t, err)
	assert.False(t, allowed)

	// The original window would have ended by now, but the denied attempt
	// re-armed it, so the caller is still locked out.
	mr.FastForward(45 * time.Second)
	allowed, err = limiter.TryAcquire(ctx, "signin:a@x.com", 3)
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(61 * time.Second)
	allowed, err = limiter.TryAcquire(ctx, "signin:a@x.com", 3)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	kv, _ := newRedisStore(t)
	limiter := NewRateLimiter(kv, time.Minute)

	for i := 0; i < 4; i++ {
		_, err := limiter.TryAcquire(ctx, "signin:a@x.com", 3)
		require.NoError(t, err)
	}

	allowed, err := limiter.TryAcquire(ctx, "signin:b@x.com", 3)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiterReset(t *testing.T) {
	ctx := context.Background()
	kv, _ := newRedisStore(t)
	limiter := NewRateLimiter(kv, time.Minute)

	for i := 0; i < 4; i++ {
		_, err := limiter.TryAcquire(ctx, "signin:a@x.com", 3)
		require.NoError(t, err)
	}

	require.NoError(t, limiter.Reset(ctx, "signin:a@x.com"))

	allowed, err := limiter.TryAcquire(ctx, "signin:a@x.com", 3)
	require.NoError(t, err)
	assert.True(t, allowed)
}
