package email

import (
	"context"
	"log"

	"github.com/edushare/auth/ports"
)

// LogSender writes OTP codes to the process log instead of sending email.
// It is the fallback when no SMTP host is configured, for local development.
type LogSender struct{}

// NewLogSender creates a sender that only logs.
func NewLogSender() ports.EmailSender {
	return LogSender{}
}

func (LogSender) SendOtp(ctx context.Context, to, code string) error {
	log.Printf("otp for %s: %s", to, code)
	return nil
}
