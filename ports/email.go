package ports

import "context"

// EmailSender delivers OTP codes. Delivery failures wrap
// core.ErrDeliveryFailed so callers can tell them apart from other errors:
// signup swallows them, the standalone send path propagates them.
type EmailSender interface {
	SendOtp(ctx context.Context, to, code string) error
}
