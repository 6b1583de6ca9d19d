package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MailSender abstracts outbound mail so the auth plugin does not depend on
// the SMTP plugin directly. smtp.MailService satisfies it.
type MailSender interface {
	SendMail(ctx context.Context, to []string, subject, body string) error
	IsConfigured(ctx context.Context) bool
}

const otpMailSubject = "Verify using OTP"

// renderOTPMail renders the verification email (otp_mail.templ) to a string.
func renderOTPMail(ctx context.Context, name, code string, validFor time.Duration, now time.Time) (string, error) {
	var b strings.Builder
	if err := otpMail(name, code, int(validFor.Minutes()), now.Year()).Render(ctx, &b); err != nil {
		return "", fmt.Errorf("rendering otp mail: %w", err)
	}
	return b.String(), nil
}
