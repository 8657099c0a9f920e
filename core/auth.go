package core

import (
	"time"

	"github.com/google/uuid"
)

// TokenType distinguishes the two halves of a session token pair.
// Its string value doubles as the session key prefix in the backing store.
type TokenType string

const (
	// TokenTypeAccess marks short-lived tokens presented on every request.
	TokenTypeAccess TokenType = "access"

	// TokenTypeRefresh marks long-lived tokens used only to rotate sessions.
	TokenTypeRefresh TokenType = "refresh"
)

// TokenPair carries the access and refresh tokens that are always issued
// and revoked together.
type TokenPair struct {
	AccessToken  string `json:"accessToken" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// User represents a registered account as seen by the auth flows.
// PasswordHash is opaque to everything except the password hasher.
type User struct {
	ID            uuid.UUID
	Email         string
	Username      string
	PasswordHash  string
	FirstName     string
	LastName      string
	DateOfBirth   time.Time
	EmailVerified bool
	CreatedAt     time.Time
}
