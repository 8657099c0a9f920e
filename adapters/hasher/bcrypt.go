package hasher

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/edushare/auth/ports"
)

// Bcrypt implements the PasswordHasher port. Hash and Verify run bcrypt at
// the configured cost, dispatched through a bounded slot pool so that a
// burst of signups cannot occupy every goroutine with CPU-bound hashing.
type Bcrypt struct {
	cost  int
	slots chan struct{}
}

// NewBcrypt creates a hasher with the given cost and worker bound. A cost
// of 0 selects bcrypt.DefaultCost; workers must be at least 1.
func NewBcrypt(cost, workers int) (ports.PasswordHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}
	if workers < 1 {
		return nil, errors.New("hasher needs at least one worker")
	}
	return &Bcrypt{
		cost:  cost,
		slots: make(chan struct{}, workers),
	}, nil
}

func (b *Bcrypt) Hash(ctx context.Context, password string) (string, error) {
	if err := b.acquire(ctx); err != nil {
		return "", err
	}
	defer b.release()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (b *Bcrypt) Verify(ctx context.Context, hash, password string) (bool, error) {
	if err := b.acquire(ctx); err != nil {
		return false, err
	}
	defer b.release()

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		// Malformed stored hash is indistinguishable from a mismatch to the
		// caller; treating it as one avoids an oracle on hash integrity.
		return false, nil
	}
	return true, nil
}

func (b *Bcrypt) acquire(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bcrypt) release() {
	<-b.slots
}
