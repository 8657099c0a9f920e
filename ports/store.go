package ports

import (
	"context"
	"time"
)

// Store is the key/value + TTL contract that sessions, OTP codes and rate
// counters all run against. Absence is reported explicitly via the ok
// return, never as an error; errors mean the store itself failed.
type Store interface {
	// Set writes a value under key with the given TTL, overwriting any
	// previous value and its TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get retrieves a value. ok is false when the key does not exist,
	// including natural TTL expiry.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Del removes keys. Deleting an absent key is a success.
	Del(ctx context.Context, keys ...string) error

	// RPush appends values to the list stored at key, creating it if needed.
	RPush(ctx context.Context, key string, values ...string) error

	// LRange returns the full list stored at key; empty for absent keys.
	LRange(ctx context.Context, key string) ([]string, error)

	// Incr atomically increments the integer at key, creating it at 1.
	Incr(ctx context.Context, key string) (int64, error)

	// Expire sets or resets the TTL of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
