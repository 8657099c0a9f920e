package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/edushare/auth/core"
)

// UserDirectory is the external user persistence collaborator. Lookup
// misses are reported via the ok return, not as errors; errors mean the
// directory itself is unreachable or failed.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*core.User, bool, error)

	FindByUsername(ctx context.Context, username string) (*core.User, bool, error)

	FindByID(ctx context.Context, id uuid.UUID) (*core.User, bool, error)

	// Create persists a new user. The caller is responsible for uniqueness
	// checks; Create fails on a conflicting email or username.
	Create(ctx context.Context, user *core.User) error

	// Save persists changes to an existing user.
	Save(ctx context.Context, user *core.User) error

	// MarkVerified flips the email-verified flag for the given address and
	// returns the updated user.
	MarkVerified(ctx context.Context, email string) (*core.User, bool, error)

	// UpdatePassword replaces the stored password hash for the given
	// address and returns the updated user.
	UpdatePassword(ctx context.Context, email, passwordHash string) (*core.User, bool, error)
}
