package ports

import "context"

// PasswordHasher is an opaque one-way hash + verify capability. Hashing is
// deliberately expensive and CPU-bound, so implementations must bound their
// own concurrency rather than stall the caller's event loop; the context
// lets callers abandon a hash that is still waiting for a worker slot.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)

	// Verify reports whether password matches hash. A mismatch is a false
	// result, not an error; errors are reserved for infrastructure failure.
	Verify(ctx context.Context, hash, password string) (bool, error)
}
