package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/edushare/auth/ports"
)

const (
	otpLength   = 10
	otpAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	otpPrefix   = "otp"
)

// OtpService generates, stores and single-use-validates one-time passwords
// against the backing store. At most one code is live per email: issuing a
// new one overwrites any prior code.
type OtpService struct {
	store ports.Store
	ttl   time.Duration
}

// NewOtpService creates an OTP service with the configured code lifetime.
func NewOtpService(store ports.Store, ttl time.Duration) *OtpService {
	return &OtpService{store: store, ttl: ttl}
}

// Issue generates a random alphanumeric code, stores it under the email
// with the configured TTL and returns it for delivery.
func (s *OtpService) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	if err := s.store.Set(ctx, otpKey(email), code, s.ttl); err != nil {
		return "", err
	}
	return code, nil
}

// Validate checks a submitted code. On an exact match the key is deleted so
// the code cannot be replayed. A mismatch leaves the stored code in place:
// a mistyped attempt must not burn the correct one. Brute force is bounded
// by the rate limiter layered on the verify endpoint, not here.
func (s *OtpService) Validate(ctx context.Context, email, submitted string) (bool, error) {
	key := otpKey(email)

	stored, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return false, nil
	}

	if err := s.store.Del(ctx, key); err != nil {
		return false, err
	}
	return true, nil
}

func generateCode() (string, error) {
	code := make([]byte, otpLength)
	max := big.NewInt(int64(len(otpAlphabet)))
	for i := range code {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = otpAlphabet[idx.Int64()]
	}
	return string(code), nil
}

func otpKey(email string) string {
	return otpPrefix + ":" + email
}
