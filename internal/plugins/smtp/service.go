package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	gosmtp "net/smtp"
	"strconv"
	"time"

	"github.com/vishwatech/studyplan/internal/config"
)

// ErrNotConfigured is returned when mail is sent without SMTP settings.
var ErrNotConfigured = errors.New("smtp is not configured")

// MailService is the interface other plugins use to send email.
type MailService interface {
	SendMail(ctx context.Context, to []string, subject, body string) error
	IsConfigured(ctx context.Context) bool

	// Verify dials the server and authenticates without sending anything.
	Verify(ctx context.Context) error
}

// mailService implements MailService over net/smtp.
type mailService struct {
	cfg config.MailConfig

	// logOnly makes an unconfigured service log messages instead of failing.
	logOnly bool
	now     func() time.Time
}

// NewMailService creates a mail service. When SMTP is not configured and
// logOnly is set (development), messages are logged instead of sent.
func NewMailService(cfg config.MailConfig, logOnly bool) MailService {
	return &mailService{cfg: cfg, logOnly: logOnly, now: time.Now}
}

// IsConfigured returns true if an SMTP host and sender are set.
func (s *mailService) IsConfigured(context.Context) bool {
	return s.cfg.Configured()
}

// SendMail delivers an HTML email. The context bounds the whole exchange,
// dial included.
func (s *mailService) SendMail(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}
	for _, v := range append([]string{subject}, to...) {
		if err := validateHeaderValue(v); err != nil {
			return err
		}
	}

	if !s.cfg.Configured() {
		if s.logOnly {
			slog.Info("smtp not configured, mail logged instead of sent",
				slog.Any("to", to),
				slog.String("subject", subject),
			)
			slog.Debug("unsent mail body", slog.String("body", body))
			return nil
		}
		return ErrNotConfigured
	}

	msg := message{
		From:    mail.Address{Name: s.cfg.FromName, Address: s.cfg.FromAddress},
		To:      to,
		Subject: subject,
		HTML:    body,
		Date:    s.now(),
	}

	client, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := sendMessage(client, s.cfg.FromAddress, to, msg.bytes()); err != nil {
		return err
	}

	slog.Debug("mail sent", slog.Any("to", to), slog.String("subject", subject))
	return nil
}

// Verify checks connectivity and credentials with the current settings.
func (s *mailService) Verify(ctx context.Context) error {
	if !s.cfg.Configured() {
		return ErrNotConfigured
	}
	client, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Quit()
}

// dial connects, negotiates TLS per the encryption mode and authenticates.
// The connection deadline follows ctx.
func (s *mailService) dial(ctx context.Context) (*gosmtp.Client, error) {
	host := s.cfg.Host
	addr := net.JoinHostPort(host, strconv.Itoa(s.cfg.Port))
	tlsConfig := &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.Encryption == EncryptionSSL {
		d := &tls.Dialer{Config: tlsConfig}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := gosmtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	if s.cfg.Encryption == EncryptionStartTLS {
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("starting TLS: %w", err)
		}
	}

	if s.cfg.Username != "" {
		auth := gosmtp.PlainAuth("", s.cfg.Username, s.cfg.Password, host)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, fmt.Errorf("authenticating: %w", err)
		}
	}
	return client, nil
}

// sendMessage handles MAIL FROM, RCPT TO, DATA for an existing SMTP client.
func sendMessage(client *gosmtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	for _, recipient := range to {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("RCPT TO %s: %w", recipient, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing data: %w", err)
	}
	return client.Quit()
}
