package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/edushare/auth/core"
	"github.com/edushare/auth/ports"
)

// AuthService composes the token, session, OTP and rate-limit components
// with the external user directory and email sender into the auth flows.
// It holds only configuration and collaborator handles; all state lives in
// the backing store and the directory.
type AuthService struct {
	directory ports.UserDirectory
	hasher    ports.PasswordHasher
	tokenizer ports.Tokenizer
	sessions  *SessionService
	otp       *OtpService
	email     ports.EmailSender
	events    ports.EventPublisher
}

// NewAuthService creates the orchestrator. events may be nil when no
// publisher is wired; all other collaborators are required.
func NewAuthService(
	directory ports.UserDirectory,
	hasher ports.PasswordHasher,
	tokenizer ports.Tokenizer,
	sessions *SessionService,
	otp *OtpService,
	email ports.EmailSender,
	events ports.EventPublisher,
) *AuthService {
	return &AuthService{
		directory: directory,
		hasher:    hasher,
		tokenizer: tokenizer,
		sessions:  sessions,
		otp:       otp,
		email:     email,
		events:    events,
	}
}

// SignupParams is the validated input for Signup.
type SignupParams struct {
	Email       string
	Password    string
	Username    string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
}

// Signup creates the user in pending-verification state and sends a first
// OTP. Delivery failure is logged and swallowed: signup still succeeds and
// the user can request a fresh code.
func (s *AuthService) Signup(ctx context.Context, params SignupParams) error {
	if _, taken, err := s.directory.FindByEmail(ctx, params.Email); err != nil {
		return err
	} else if taken {
		return core.NewError(core.KindEmailInUse)
	}
	if _, taken, err := s.directory.FindByUsername(ctx, params.Username); err != nil {
		return err
	} else if taken {
		return core.NewError(core.KindUsernameInUse)
	}

	hash, err := s.hasher.Hash(ctx, params.Password)
	if err != nil {
		return err
	}

	user := &core.User{
		ID:            uuid.New(),
		Email:         params.Email,
		Username:      params.Username,
		PasswordHash:  hash,
		FirstName:     params.FirstName,
		LastName:      params.LastName,
		DateOfBirth:   params.DateOfBirth,
		EmailVerified: false,
		CreatedAt:     time.Now(),
	}
	if err := s.directory.Create(ctx, user); err != nil {
		return err
	}

	if err := s.SendOtp(ctx, user.Email); err != nil {
		log.Printf("otp email failed for %s: %v", user.Email, err)
	}
	return nil
}

// SendOtp issues a fresh code and delivers it. Unlike signup, a delivery
// failure here is fatal to the request: sending the code was the user's
// explicit ask and nothing else would surface the failure.
func (s *AuthService) SendOtp(ctx context.Context, email string) error {
	code, err := s.otp.Issue(ctx, email)
	if err != nil {
		return err
	}
	if err := s.email.SendOtp(ctx, email, code); err != nil {
		if errors.Is(err, core.ErrDeliveryFailed) {
			return core.WrapError(core.KindFailedToSendOTP, err)
		}
		return err
	}
	return nil
}

// VerifyOtp consumes the code, marks the user verified and opens a session.
func (s *AuthService) VerifyOtp(ctx context.Context, email, code string) (core.TokenPair, error) {
	valid, err := s.otp.Validate(ctx, email, code)
	if err != nil {
		return core.TokenPair{}, err
	}
	if !valid {
		return core.TokenPair{}, core.NewError(core.KindInvalidOTP)
	}

	user, found, err := s.directory.MarkVerified(ctx, email)
	if err != nil {
		return core.TokenPair{}, err
	}
	if !found {
		return core.TokenPair{}, core.NewError(core.KindUserNotExists)
	}

	return s.createSession(ctx, user.ID)
}

// Signin authenticates email+password and opens a session. Unknown email
// and wrong password both map to INVALID_CREDENTIALS; an unverified email
// is reported distinctly so the client can prompt for OTP verification.
func (s *AuthService) Signin(ctx context.Context, email, password string) (core.TokenPair, error) {
	user, found, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return core.TokenPair{}, err
	}
	if !found {
		return core.TokenPair{}, core.NewError(core.KindInvalidCredentials)
	}

	match, err := s.hasher.Verify(ctx, user.PasswordHash, password)
	if err != nil {
		return core.TokenPair{}, err
	}
	if !match {
		return core.TokenPair{}, core.NewError(core.KindInvalidCredentials)
	}
	if !user.EmailVerified {
		return core.TokenPair{}, core.NewError(core.KindEmailNotVerified)
	}

	return s.createSession(ctx, user.ID)
}

// Refresh rotates the pair: the refresh token must still have a live
// session, then both old entries are revoked before a new pair is issued.
// The old tokens stay cryptographically valid until their own expiry, but
// revocation is enforced by store absence, not key invalidation.
func (s *AuthService) Refresh(ctx context.Context, pair core.TokenPair) (core.TokenPair, error) {
	userID, ok, err := s.sessions.ValidateRefresh(ctx, pair.RefreshToken)
	if err != nil {
		return core.TokenPair{}, err
	}
	if !ok {
		return core.TokenPair{}, core.NewError(core.KindInvalidCredentials)
	}

	if err := s.sessions.Revoke(ctx, pair.RefreshToken, core.TokenTypeRefresh); err != nil {
		return core.TokenPair{}, err
	}
	if err := s.sessions.Revoke(ctx, pair.AccessToken, core.TokenTypeAccess); err != nil {
		return core.TokenPair{}, err
	}

	return s.createSession(ctx, userID)
}

// Logout revokes both entries of the supplied pair. No user-state change,
// and revoking an already-dead pair is still a success.
func (s *AuthService) Logout(ctx context.Context, pair core.TokenPair) error {
	if err := s.sessions.Revoke(ctx, pair.AccessToken, core.TokenTypeAccess); err != nil {
		return err
	}
	if err := s.sessions.Revoke(ctx, pair.RefreshToken, core.TokenTypeRefresh); err != nil {
		return err
	}

	if s.events != nil {
		if userID, err := s.tokenizer.Subject(pair.RefreshToken); err == nil {
			if err := s.events.PublishLoggedOut(ctx, userID); err != nil {
				log.Printf("failed to publish logout event: %v", err)
			}
		}
	}
	return nil
}

// ForgotPassword consumes the OTP, replaces the password hash, kills every
// session of the user and issues one fresh authoritative pair.
func (s *AuthService) ForgotPassword(ctx context.Context, email, code, newPassword string) (core.TokenPair, error) {
	valid, err := s.otp.Validate(ctx, email, code)
	if err != nil {
		return core.TokenPair{}, err
	}
	if !valid {
		return core.TokenPair{}, core.NewError(core.KindInvalidOTP)
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return core.TokenPair{}, err
	}

	user, found, err := s.directory.UpdatePassword(ctx, email, hash)
	if err != nil {
		return core.TokenPair{}, err
	}
	if !found {
		return core.TokenPair{}, core.NewError(core.KindUserNotExists)
	}

	if err := s.sessions.InvalidateAll(ctx, user.ID); err != nil {
		return core.TokenPair{}, err
	}
	if s.events != nil {
		if err := s.events.PublishSessionsInvalidated(ctx, user.ID); err != nil {
			log.Printf("failed to publish invalidation event: %v", err)
		}
	}

	return s.createSession(ctx, user.ID)
}

// Me returns the profile of an authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*core.User, error) {
	user, found, err := s.directory.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, core.NewError(core.KindUserNotExists)
	}
	return user, nil
}

// createSession issues a fresh pair and persists both session entries.
// Once a token is created it is not rolled back: an error in a later step
// leaves earlier side effects in place, and the caller may retry the flow.
func (s *AuthService) createSession(ctx context.Context, userID uuid.UUID) (core.TokenPair, error) {
	accessToken, err := s.tokenizer.Issue(userID, core.TokenTypeAccess)
	if err != nil {
		return core.TokenPair{}, err
	}
	refreshToken, err := s.tokenizer.Issue(userID, core.TokenTypeRefresh)
	if err != nil {
		return core.TokenPair{}, err
	}

	if err := s.sessions.Create(ctx, accessToken, userID, core.TokenTypeAccess); err != nil {
		return core.TokenPair{}, err
	}
	if err := s.sessions.Create(ctx, refreshToken, userID, core.TokenTypeRefresh); err != nil {
		return core.TokenPair{}, err
	}

	return core.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
