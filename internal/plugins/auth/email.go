package auth

import (
	"errors"
	"regexp"
	"strings"
)

// Limits from RFC 5321 section 4.5.3.1.
const (
	maxEmailLen     = 254
	maxLocalPartLen = 64
)

var (
	ErrEmailEmpty       = errors.New("email is empty")
	ErrEmailTooLong     = errors.New("email is longer than 254 characters")
	ErrEmailMalformed   = errors.New("email is malformed")
	ErrLocalPartTooLong = errors.New("email local part is longer than 64 characters")
)

var emailPattern = regexp.MustCompile(
	"^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@" +
		"[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?" +
		"(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$",
)

// ValidateEmail checks the syntax and length limits of an address. It does
// not resolve the domain.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailEmpty
	}
	if len(email) > maxEmailLen {
		return ErrEmailTooLong
	}
	if !emailPattern.MatchString(email) {
		return ErrEmailMalformed
	}

	// Domain labels are capped at 63 characters by the pattern itself.
	local, _, _ := strings.Cut(email, "@")
	if len(local) > maxLocalPartLen {
		return ErrLocalPartTooLong
	}
	return nil
}

// normalizeEmail trims and lowercases an address before lookups and storage.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
