package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edushare/auth/adapters/directory"
	"github.com/edushare/auth/adapters/events"
	"github.com/edushare/auth/adapters/hasher"
	"github.com/edushare/auth/adapters/tokenizer"
	"github.com/edushare/auth/core"
)

// fakeSender captures the last delivered OTP code instead of emailing it.
type fakeSender struct {
	lastCode string
	fail     error
}

func (s *fakeSender) SendOtp(ctx context.Context, to, code string) error {
	if s.fail != nil {
		return s.fail
	}
	s.lastCode = code
	return nil
}

type authFixture struct {
	auth     *AuthService
	sessions *SessionService
	sender   *fakeSender
	events   <-chan *events.SessionEvent
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	kv, _ := newRedisStore(t)
	dir := directory.NewMemoryDirectory()

	h, err := hasher.NewBcrypt(bcrypt.MinCost, 2)
	require.NoError(t, err)

	tk, err := tokenizer.NewJWTTokenizer([]byte("test-secret"), time.Minute, time.Hour)
	require.NoError(t, err)

	sessions := NewSessionService(kv, tk, time.Minute, time.Hour)
	otp := NewOtpService(kv, 10*time.Minute)
	sender := &fakeSender{}

	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubsub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	messages, err := pubsub.Subscribe(ctx, events.SessionsTopic)
	require.NoError(t, err)

	received := make(chan *events.SessionEvent, 8)
	go func() {
		for msg := range messages {
			var event events.SessionEvent
			if err := json.Unmarshal(msg.Payload, &event); err == nil {
				received <- &event
			}
			msg.Ack()
		}
	}()

	auth := NewAuthService(dir, h, tk, sessions, otp, sender, events.NewWatermillPublisher(pubsub))

	return &authFixture{
		auth:     auth,
		sessions: sessions,
		sender:   sender,
		events:   received,
	}
}

func (f *authFixture) signup(t *testing.T, email, username string) {
	t.Helper()

	err := f.auth.Signup(context.Background(), SignupParams{
		Email:       email,
		Password:    "Passw0rd!",
		Username:    username,
		FirstName:   "Ada",
		LastName:    "Lovelace",
		DateOfBirth: time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func (f *authFixture) signupVerified(t *testing.T, email, username string) core.TokenPair {
	t.Helper()

	f.signup(t, email, username)
	pair, err := f.auth.VerifyOtp(context.Background(), email, f.sender.lastCode)
	require.NoError(t, err)
	return pair
}

func (f *authFixture) waitEvent(t *testing.T) *events.SessionEvent {
	t.Helper()

	select {
	case event := <-f.events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session event")
		return nil
	}
}

func TestSignupSendsOtpAndVerifyOpensSession(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.signup(t, "ada@x.com", "ada")
	require.NotEmpty(t, f.sender.lastCode)

	pair, err := f.auth.VerifyOtp(ctx, "ada@x.com", f.sender.lastCode)
	require.NoError(t, err)

	userID, ok, err := f.sessions.ValidateAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, ok)

	me, err := f.auth.Me(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", me.Email)
	assert.True(t, me.EmailVerified)
}

func TestSignupRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.signup(t, "ada@x.com", "ada")

	err := f.auth.Signup(ctx, SignupParams{
		Email:    "ada@x.com",
		Password: "Passw0rd!",
		Username: "other",
	})
	assert.True(t, core.IsKind(err, core.KindEmailInUse))

	err = f.auth.Signup(ctx, SignupParams{
		Email:    "other@x.com",
		Password: "Passw0rd!",
		Username: "ada",
	})
	assert.True(t, core.IsKind(err, core.KindUsernameInUse))
}

func TestSignupSurvivesOtpDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.sender.fail = core.ErrDeliveryFailed

	err := f.auth.Signup(ctx, SignupParams{
		Email:    "ada@x.com",
		Password: "Passw0rd!",
		Username: "ada",
	})
	require.NoError(t, err)

	// The account exists; a later explicit send can still reach the user.
	f.sender.fail = nil
	require.NoError(t, f.auth.SendOtp(ctx, "ada@x.com"))
	require.NotEmpty(t, f.sender.lastCode)
}

func TestSendOtpReportsDeliveryFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.sender.fail = core.ErrDeliveryFailed

	err := f.auth.SendOtp(context.Background(), "ada@x.com")
	assert.True(t, core.IsKind(err, core.KindFailedToSendOTP))
}

func TestVerifyOtpRejectsWrongCode(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.signup(t, "ada@x.com", "ada")

	_, err := f.auth.VerifyOtp(ctx, "ada@x.com", "0000000000")
	assert.True(t, core.IsKind(err, core.KindInvalidOTP))

	// The real code is still usable after the failed attempt.
	_, err = f.auth.VerifyOtp(ctx, "ada@x.com", f.sender.lastCode)
	require.NoError(t, err)
}

func TestSigninFlow(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.signupVerified(t, "ada@x.com", "ada")

	pair, err := f.auth.Signin(ctx, "ada@x.com", "Passw0rd!")
	require.NoError(t, err)

	_, ok, err := f.sessions.ValidateAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = f.sessions.ValidateRefresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSigninRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.signupVerified(t, "ada@x.com", "ada")

	_, err := f.auth.Signin(ctx, "nobody@x.com", "Passw0rd!")
	assert.True(t, core.IsKind(err, core.KindInvalidCredentials))

	_, err = f.auth.Signin(ctx, "ada@x.com", "wrong-password")
	assert.True(t, core.IsKind(err, core.KindInvalidCredentials))
}

func TestSigninRequiresVerifiedEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.signup(t, "ada@x.com", "ada")

	_, err := f.auth.Signin(ctx, "ada@x.com", "Passw0rd!")
	assert.True(t, core.IsKind(err, core.KindEmailNotVerified))

	// A wrong password on an unverified account still reads as bad
	// credentials, not as an unverified email.
	_, err = f.auth.Signin(ctx, "ada@x.com", "wrong-password")
	assert.True(t, core.IsKind(err, core.KindInvalidCredentials))
}

func TestRefreshRotatesPair(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	old := f.signupVerified(t, "ada@x.com", "ada")

	fresh, err := f.auth.Refresh(ctx, old)
	require.NoError(t, err)
	assert.NotEqual(t, old.AccessToken, fresh.AccessToken)
	assert.NotEqual(t, old.RefreshToken, fresh.RefreshToken)

	// Old pair is dead on both sides.
	_, ok, err := f.sessions.ValidateAccess(ctx, old.AccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = f.sessions.ValidateRefresh(ctx, old.RefreshToken)
	require.NoError(t, err)
	assert.False(t, ok)

	// Replaying the consumed refresh token fails.
	_, err = f.auth.Refresh(ctx, old)
	assert.True(t, core.IsKind(err, core.KindInvalidCredentials))

	_, ok, err = f.sessions.ValidateAccess(ctx, fresh.AccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRefreshRejectsAccessTokenAsRefresh(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	pair := f.signupVerified(t, "ada@x.com", "ada")

	_, err := f.auth.Refresh(ctx, core.TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.AccessToken,
	})
	assert.True(t, core.IsKind(err, core.KindInvalidCredentials))
}

func TestLogoutRevokesPairAndPublishes(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	pair := f.signupVerified(t, "ada@x.com", "ada")

	require.NoError(t, f.auth.Logout(ctx, pair))

	_, ok, err := f.sessions.ValidateAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.False(t, ok)

	event := f.waitEvent(t)
	assert.Equal(t, events.EventLoggedOut, event.Type)

	// Logging out again is still a success.
	require.NoError(t, f.auth.Logout(ctx, pair))
}

func TestForgotPasswordResetsAndKillsSessions(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	oldPair := f.signupVerified(t, "ada@x.com", "ada")

	require.NoError(t, f.auth.SendOtp(ctx, "ada@x.com"))

	fresh, err := f.auth.ForgotPassword(ctx, "ada@x.com", f.sender.lastCode, "N3wPassword!")
	require.NoError(t, err)

	// Every pre-reset session is gone; only the fresh pair survives.
	_, ok, err := f.sessions.ValidateAccess(ctx, oldPair.AccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = f.sessions.ValidateAccess(ctx, fresh.AccessToken)
	require.NoError(t, err)
	assert.True(t, ok)

	event := f.waitEvent(t)
	assert.Equal(t, events.EventSessionsInvalidated, event.Type)

	_, err = f.auth.Signin(ctx, "ada@x.com", "Passw0rd!")
	assert.True(t, core.IsKind(err, core.KindInvalidCredentials))
	_, err = f.auth.Signin(ctx, "ada@x.com", "N3wPassword!")
	require.NoError(t, err)
}

func TestForgotPasswordRequiresValidOtp(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.signupVerified(t, "ada@x.com", "ada")

	_, err := f.auth.ForgotPassword(ctx, "ada@x.com", "0000000000", "N3wPassword!")
	assert.True(t, core.IsKind(err, core.KindInvalidOTP))
}

func TestMeUnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.Me(context.Background(), uuid.New())
	assert.True(t, core.IsKind(err, core.KindUserNotExists))
}
