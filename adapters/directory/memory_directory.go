package directory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/edushare/auth/core"
	"github.com/edushare/auth/ports"
)

// ErrConflict is returned by Create when the email or username is taken.
// Flows check uniqueness first, so hitting it means a racing signup.
var ErrConflict = errors.New("email or username already exists")

// MemoryDirectory implements the UserDirectory port with in-process maps.
// It is the reference collaborator for tests and single-node deployments;
// production setups plug in their own directory service behind the port.
type MemoryDirectory struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*core.User
	byEmail    map[string]uuid.UUID
	byUsername map[string]uuid.UUID
}

// NewMemoryDirectory creates an empty directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byID:       make(map[uuid.UUID]*core.User),
		byEmail:    make(map[string]uuid.UUID),
		byUsername: make(map[string]uuid.UUID),
	}
}

var _ ports.UserDirectory = (*MemoryDirectory)(nil)

func (d *MemoryDirectory) FindByEmail(ctx context.Context, email string) (*core.User, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byEmail[email]
	if !ok {
		return nil, false, nil
	}
	return copyUser(d.byID[id]), true, nil
}

func (d *MemoryDirectory) FindByUsername(ctx context.Context, username string) (*core.User, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byUsername[username]
	if !ok {
		return nil, false, nil
	}
	return copyUser(d.byID[id]), true, nil
}

func (d *MemoryDirectory) FindByID(ctx context.Context, id uuid.UUID) (*core.User, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.byID[id]
	if !ok {
		return nil, false, nil
	}
	return copyUser(user), true, nil
}

func (d *MemoryDirectory) Create(ctx context.Context, user *core.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, taken := d.byEmail[user.Email]; taken {
		return ErrConflict
	}
	if _, taken := d.byUsername[user.Username]; taken {
		return ErrConflict
	}

	stored := copyUser(user)
	d.byID[stored.ID] = stored
	d.byEmail[stored.Email] = stored.ID
	d.byUsername[stored.Username] = stored.ID
	return nil
}

func (d *MemoryDirectory) Save(ctx context.Context, user *core.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byID[user.ID]; !ok {
		return errors.New("user does not exist")
	}
	d.byID[user.ID] = copyUser(user)
	return nil
}

func (d *MemoryDirectory) MarkVerified(ctx context.Context, email string) (*core.User, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.byEmail[email]
	if !ok {
		return nil, false, nil
	}
	user := d.byID[id]
	user.EmailVerified = true
	return copyUser(user), true, nil
}

func (d *MemoryDirectory) UpdatePassword(ctx context.Context, email, passwordHash string) (*core.User, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.byEmail[email]
	if !ok {
		return nil, false, nil
	}
	user := d.byID[id]
	user.PasswordHash = passwordHash
	return copyUser(user), true, nil
}

func copyUser(user *core.User) *core.User {
	out := *user
	return &out
}
