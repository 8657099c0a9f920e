package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/edushare/auth/core"
	"github.com/edushare/auth/ports"
)

// JWTTokenizer implements the Tokenizer port with HS256-signed JWTs. The
// token type travels in the audience claim so that an access token can
// never be replayed as a refresh token.
type JWTTokenizer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// Claims are the registered claims plus nothing: subject carries the user
// ID, audience the token type, jti a random UUID.
type Claims struct {
	jwt.RegisteredClaims
}

// NewJWTTokenizer creates a tokenizer signing with the process-wide secret.
func NewJWTTokenizer(secret []byte, accessTTL, refreshTTL time.Duration) (ports.Tokenizer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &JWTTokenizer{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (t *JWTTokenizer) Issue(userID uuid.UUID, tokenType core.TokenType) (string, error) {
	ttl := t.accessTTL
	if tokenType == core.TokenTypeRefresh {
		ttl = t.refreshTTL
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{string(tokenType)},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Validate fails closed: malformed input, an expired timestamp and a
// signature mismatch are all indistinguishable to the caller.
func (t *JWTTokenizer) Validate(token string) bool {
	_, err := t.parse(token)
	return err == nil
}

func (t *JWTTokenizer) IsRefresh(token string) bool {
	claims, err := t.parse(token)
	if err != nil {
		return false
	}
	aud, err := claims.GetAudience()
	if err != nil {
		return false
	}
	return len(aud) > 0 && aud[0] == string(core.TokenTypeRefresh)
}

func (t *JWTTokenizer) Subject(token string) (uuid.UUID, error) {
	claims, err := t.parse(token)
	if err != nil {
		return uuid.Nil, err
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, fmt.Errorf("token has no subject: %w", err)
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject is not a user id: %w", err)
	}
	return userID, nil
}

func (t *JWTTokenizer) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
