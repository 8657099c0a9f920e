package ports

import (
	"context"

	"github.com/google/uuid"
)

// EventPublisher notifies other components about session lifecycle changes.
// Publishing is best-effort: flows log failures and carry on, the store is
// the authority on revocation either way.
type EventPublisher interface {
	// PublishLoggedOut announces that one token pair was revoked.
	PublishLoggedOut(ctx context.Context, userID uuid.UUID) error

	// PublishSessionsInvalidated announces that every session of the user
	// was revoked, e.g. after a password reset.
	PublishSessionsInvalidated(ctx context.Context, userID uuid.UUID) error
}
