package tokenizer

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edushare/auth/core"
)

func newTestTokenizer(t *testing.T, accessTTL, refreshTTL time.Duration) *JWTTokenizer {
	t.Helper()

	tk, err := NewJWTTokenizer([]byte("test-secret"), accessTTL, refreshTTL)
	require.NoError(t, err)
	return tk.(*JWTTokenizer)
}

func TestIssueValidateRoundTrip(t *testing.T) {
	tk := newTestTokenizer(t, time.Minute, time.Hour)
	userID := uuid.New()

	for _, tokenType := range []core.TokenType{core.TokenTypeAccess, core.TokenTypeRefresh} {
		token, err := tk.Issue(userID, tokenType)
		require.NoError(t, err)

		assert.True(t, tk.Validate(token))

		subject, err := tk.Subject(token)
		require.NoError(t, err)
		assert.Equal(t, userID, subject)
	}
}

func TestIsRefresh(t *testing.T) {
	tk := newTestTokenizer(t, time.Minute, time.Hour)
	userID := uuid.New()

	access, err := tk.Issue(userID, core.TokenTypeAccess)
	require.NoError(t, err)
	refresh, err := tk.Issue(userID, core.TokenTypeRefresh)
	require.NoError(t, err)

	assert.False(t, tk.IsRefresh(access))
	assert.True(t, tk.IsRefresh(refresh))
}

func TestValidateExpiredToken(t *testing.T) {
	tk := newTestTokenizer(t, -time.Second, -time.Second)

	token, err := tk.Issue(uuid.New(), core.TokenTypeAccess)
	require.NoError(t, err)

	assert.False(t, tk.Validate(token))
}

func TestValidateFailsClosed(t *testing.T) {
	tk := newTestTokenizer(t, time.Minute, time.Hour)

	token, err := tk.Issue(uuid.New(), core.TokenTypeAccess)
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"

	cases := map[string]string{
		"empty":              "",
		"garbage":            "not-a-jwt",
		"truncated":          token[:len(token)/2],
		"tampered signature": tampered,
	}
	for name, input := range cases {
		assert.False(t, tk.Validate(input), name)
	}
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	tk := newTestTokenizer(t, time.Minute, time.Hour)

	other, err := NewJWTTokenizer([]byte("other-secret"), time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := other.Issue(uuid.New(), core.TokenTypeAccess)
	require.NoError(t, err)

	assert.False(t, tk.Validate(token))
}

func TestValidateRejectsUnsignedAlgorithm(t *testing.T) {
	tk := newTestTokenizer(t, time.Minute, time.Hour)

	// alg=none style token: header and claims without a signature.
	token, err := tk.Issue(uuid.New(), core.TokenTypeAccess)
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	assert.False(t, tk.Validate(parts[0]+"."+parts[1]+"."))
}

func TestNewJWTTokenizerRequiresSecret(t *testing.T) {
	_, err := NewJWTTokenizer(nil, time.Minute, time.Hour)
	assert.Error(t, err)
}
