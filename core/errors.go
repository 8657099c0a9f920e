package core

import (
	"errors"
	"net/http"
)

// Kind identifies a business failure. Kinds are stable wire-level codes:
// they appear verbatim in error response bodies.
type Kind string

const (
	// KindInvalidCredentials covers bad passwords, unknown emails at signin,
	// and refresh/logout attempts with tokens that no longer have a session.
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"

	// KindEmailNotVerified is returned when a user signs in before
	// completing OTP verification.
	KindEmailNotVerified Kind = "EMAIL_NOT_VERIFIED"

	// KindEmailInUse is a signup conflict on the email address.
	KindEmailInUse Kind = "EMAIL_IN_USE"

	// KindUsernameInUse is a signup conflict on the username.
	KindUsernameInUse Kind = "USERNAME_IN_USE"

	// KindUserNotExists is a lookup miss on an operation that requires an
	// existing account.
	KindUserNotExists Kind = "USER_NOT_EXISTS"

	// KindInvalidOTP covers wrong, expired and absent codes alike.
	KindInvalidOTP Kind = "INVALID_OTP"

	// KindFailedToSendOTP is a delivery failure on the standalone send path.
	KindFailedToSendOTP Kind = "FAILED_TO_SEND_OTP"

	// KindTooManyAttempts is a rate limit denial.
	KindTooManyAttempts Kind = "TOO_MANY_ATTEMPTS"

	// KindValidationFailed is malformed or policy-violating input.
	KindValidationFailed Kind = "VALIDATION_FAILED"

	// KindInternal is the generic kind for infrastructure failures. Detail
	// stays in the logs, never in the response.
	KindInternal Kind = "INTERNAL_SERVER_ERROR"
)

var kindMessages = map[Kind]string{
	KindInvalidCredentials: "Invalid credentials",
	KindEmailNotVerified:   "Email is not verified",
	KindEmailInUse:         "Email already in use",
	KindUsernameInUse:      "Username already in use",
	KindUserNotExists:      "User does not exist",
	KindInvalidOTP:         "Invalid or expired OTP",
	KindFailedToSendOTP:    "Failed to send OTP",
	KindTooManyAttempts:    "Too many attempts, try again later",
	KindValidationFailed:   "Validation failed",
	KindInternal:           "Internal server error",
}

var kindStatuses = map[Kind]int{
	KindInvalidCredentials: http.StatusUnauthorized,
	KindEmailNotVerified:   http.StatusForbidden,
	KindEmailInUse:         http.StatusBadRequest,
	KindUsernameInUse:      http.StatusBadRequest,
	KindUserNotExists:      http.StatusBadRequest,
	KindInvalidOTP:         http.StatusBadRequest,
	KindFailedToSendOTP:    http.StatusInternalServerError,
	KindTooManyAttempts:    http.StatusTooManyRequests,
	KindValidationFailed:   http.StatusBadRequest,
	KindInternal:           http.StatusInternalServerError,
}

// Error is a typed business failure. It carries the kind, a human-readable
// message and optionally the underlying cause. Business errors are mapped
// 1:1 at the transport boundary and never retried internally.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code associated with the error kind.
func (e *Error) Status() int {
	if s, ok := kindStatuses[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// NewError creates a business error with the kind's default message.
func NewError(kind Kind) *Error {
	return &Error{Kind: kind, Message: kindMessages[kind]}
}

// WrapError creates a business error that keeps its cause for logging.
func WrapError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: kindMessages[kind], Err: err}
}

// ValidationError creates a VALIDATION_FAILED error with a specific message.
func ValidationError(message string) *Error {
	return &Error{Kind: KindValidationFailed, Message: message}
}

// IsKind reports whether err is a business error of the given kind.
func IsKind(err error, kind Kind) bool {
	var typed *Error
	if !errors.As(err, &typed) {
		return false
	}
	return typed.Kind == kind
}

var (
	// ErrStoreUnavailable wraps failures of the backing key/value store.
	// They surface as infrastructure errors, not business errors.
	ErrStoreUnavailable = errors.New("store operation failed")

	// ErrDeliveryFailed marks an email delivery failure, distinguishable
	// from other sender errors so callers can apply the per-flow policy.
	ErrDeliveryFailed = errors.New("email delivery failed")
)
