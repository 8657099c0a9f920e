package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/edushare/auth/core"
	"github.com/edushare/auth/ports"
)

// SMTPSender delivers OTP codes over plain SMTP with AUTH.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPSender creates a sender for the given SMTP endpoint.
func NewSMTPSender(host, port, username, password, from string) ports.EmailSender {
	return &SMTPSender{
		addr: host + ":" + port,
		from: from,
		auth: smtp.PlainAuth("", username, password, host),
	}
}

func (s *SMTPSender) SendOtp(ctx context.Context, to, code string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your Verification Code\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n"+
			"<p>Hello,</p><p>Your one-time code is <b>%s</b></p><p>This code expires in 10 minutes.</p>\r\n",
		s.from, to, code,
	)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("%w: %v", core.ErrDeliveryFailed, err)
	}
	return nil
}
