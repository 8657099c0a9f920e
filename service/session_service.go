package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edushare/auth/core"
	"github.com/edushare/auth/ports"
)

const userSessionsPrefix = "user-sessions"

// SessionService persists issued tokens keyed by type and keeps a reverse
// index per user for mass revocation. Presence of the session entry is the
// authority for "not yet revoked": a token whose signature is still
// cryptographically valid dies the moment its entry is deleted.
type SessionService struct {
	store     ports.Store
	tokenizer ports.Tokenizer

	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewSessionService creates a session service with per-type entry TTLs,
// which should match the tokenizer's token TTLs.
func NewSessionService(store ports.Store, tokenizer ports.Tokenizer, accessTTL, refreshTTL time.Duration) *SessionService {
	return &SessionService{
		store:      store,
		tokenizer:  tokenizer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Create writes the session entry with its TTL, then appends the entry key
// to the user's reverse index. These are two separate store operations: a
// crash in between leaves either an entry without an index reference
// (validation does not need the index) or a dangling index reference
// (cleaned up lazily by InvalidateAll, where deleting it is a no-op).
func (s *SessionService) Create(ctx context.Context, token string, userID uuid.UUID, tokenType core.TokenType) error {
	ttl := s.accessTTL
	if tokenType == core.TokenTypeRefresh {
		ttl = s.refreshTTL
	}

	key := sessionKey(tokenType, token)
	if err := s.store.Set(ctx, key, userID.String(), ttl); err != nil {
		return err
	}
	return s.store.RPush(ctx, userSessionsKey(userID), key)
}

// ValidateAccess resolves an access token to its user. ok is false for any
// validation failure: bad signature, expiry, revoked entry or a mismatch
// between the stored user and the token subject.
func (s *SessionService) ValidateAccess(ctx context.Context, token string) (uuid.UUID, bool, error) {
	return s.validate(ctx, token, core.TokenTypeAccess)
}

// ValidateRefresh is ValidateAccess for refresh tokens; it additionally
// rejects tokens that are not of the refresh type.
func (s *SessionService) ValidateRefresh(ctx context.Context, token string) (uuid.UUID, bool, error) {
	return s.validate(ctx, token, core.TokenTypeRefresh)
}

func (s *SessionService) validate(ctx context.Context, token string, tokenType core.TokenType) (uuid.UUID, bool, error) {
	if !s.tokenizer.Validate(token) {
		return uuid.Nil, false, nil
	}
	if tokenType == core.TokenTypeRefresh && !s.tokenizer.IsRefresh(token) {
		return uuid.Nil, false, nil
	}

	stored, ok, err := s.store.Get(ctx, sessionKey(tokenType, token))
	if err != nil {
		return uuid.Nil, false, err
	}
	if !ok {
		return uuid.Nil, false, nil
	}

	// The stored user must match the token subject. This defends against a
	// store/key mismatch, e.g. an entry surviving a signing key rotation.
	subject, err := s.tokenizer.Subject(token)
	if err != nil || subject.String() != stored {
		return uuid.Nil, false, nil
	}
	return subject, true, nil
}

// Revoke deletes the single session entry. Idempotent: revoking an absent
// or already-expired token is a success.
func (s *SessionService) Revoke(ctx context.Context, token string, tokenType core.TokenType) error {
	return s.store.Del(ctx, sessionKey(tokenType, token))
}

// InvalidateAll deletes every session entry listed in the user's reverse
// index, then the index itself. Stale index entries whose sessions already
// expired delete as no-ops. Not transactional: a session created
// concurrently may survive, which the password-reset flow tolerates by
// issuing one fresh authoritative pair right after.
func (s *SessionService) InvalidateAll(ctx context.Context, userID uuid.UUID) error {
	indexKey := userSessionsKey(userID)

	keys, err := s.store.LRange(ctx, indexKey)
	if err != nil {
		return err
	}
	if err := s.store.Del(ctx, keys...); err != nil {
		return err
	}
	return s.store.Del(ctx, indexKey)
}

func sessionKey(tokenType core.TokenType, token string) string {
	return string(tokenType) + ":" + token
}

func userSessionsKey(userID uuid.UUID) string {
	return userSessionsPrefix + ":" + userID.String()
}
