// Package smtp delivers outbound email for the other plugins. Settings come
// from the environment (see config.MailConfig); the password is never logged.
package smtp

import (
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"
)

// Encryption modes accepted in SMTP_ENCRYPTION.
const (
	EncryptionStartTLS = "starttls"
	EncryptionSSL      = "ssl"
	EncryptionNone     = "none"
)

// message is a single HTML email ready to be written to the DATA stream.
type message struct {
	From    mail.Address
	To      []string
	Subject string
	HTML    string
	Date    time.Time
}

// bytes renders the message in RFC 5322 form with CRLF line endings. The
// subject is Q-encoded so non-ASCII titles survive.
func (m message) bytes() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From.String())
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", m.Date.UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(m.HTML, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String())
}

// validateHeaderValue rejects CR and LF so callers cannot inject headers.
func validateHeaderValue(v string) error {
	if strings.ContainsAny(v, "\r\n") {
		return fmt.Errorf("header value contains a line break")
	}
	return nil
}
