package ports

import (
	"github.com/google/uuid"

	"github.com/edushare/auth/core"
)

// Tokenizer issues and inspects signed, self-describing session tokens.
// Implementations are stateless: validity is purely a function of the
// token's signature and expiry.
type Tokenizer interface {
	// Issue creates a signed token embedding the user ID, the token type
	// and an expiry derived from the type-specific TTL.
	Issue(userID uuid.UUID, tokenType core.TokenType) (string, error)

	// Validate reports whether the token is well-formed, unexpired and
	// carries a valid signature. It fails closed: malformed input, expired
	// timestamps and signature mismatches are all just false.
	Validate(token string) bool

	// IsRefresh reports whether the token is of the refresh type. Defined
	// only for tokens that already passed Validate.
	IsRefresh(token string) bool

	// Subject extracts the user ID. Defined only for tokens that already
	// passed Validate.
	Subject(token string) (uuid.UUID, error)
}
