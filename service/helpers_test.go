package service

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/edushare/auth/adapters/store"
	"github.com/edushare/auth/ports"
)

// newRedisStore spins up a miniredis instance and returns a Store on it.
// miniredis clocks are frozen; tests advance TTLs with FastForward.
func newRedisStore(t *testing.T) (ports.Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return store.NewRedisStore(client), mr
}
