package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/sanitize"
)

// Client-facing messages that callers match on.
const (
	msgSignInRequired   = "You need to sign in"
	msgInvalidMail      = "Invalid Mail"
	msgIncorrectOTP     = "Incorrect OTP"
	msgUserExists       = "user already exists"
	msgSuspicious       = "Suspicious activity detected, please register again"
	msgUserNotExist     = "User not exist"
	msgWrongPassword    = "Wrong Password"
	msgOTPDeliveryError = "Failed to send OTP, please try again"
	msgTooManyAttempts  = "Too many incorrect OTP attempts, please register again"
)

const (
	maxDisplayNameLen = 100

	// bcrypt ignores input beyond 72 bytes; reject instead of truncating.
	maxPasswordBytes = 72

	// maxOTPAttempts wrong codes discard the pending registration.
	maxOTPAttempts = 5
)

// AuthService handles registration, sign-in and session validation.
type AuthService interface {
	// Register mails a one-time code and returns a pending token bound to
	// the new pending registration. Nothing is stored if mailing fails.
	Register(ctx context.Context, input RegisterInput) (*IssuedToken, error)

	// VerifyOTP promotes a pending registration to a user and opens a session.
	VerifyOTP(ctx context.Context, input VerifyOTPInput) (*Session, error)

	// SignIn checks credentials and opens a session, revoking any older one.
	SignIn(ctx context.Context, input SignInInput) (*Session, error)

	// ValidateSession resolves a session token to its user.
	ValidateSession(ctx context.Context, token string) (*User, error)

	// SignOut revokes the user's active session.
	SignOut(ctx context.Context, userID string) error
}

// Options carries the tunables of the auth flow.
type Options struct {
	PendingTTL  time.Duration
	SessionTTL  time.Duration
	BcryptCost  int
	OTPLength   int
	MailTimeout time.Duration
}

// authService implements AuthService.
type authService struct {
	users   UserRepository
	pending PendingStore
	mail    MailSender
	tokens  *TokenCodec
	opts    Options

	now    func() time.Time
	newID  func() string
	newOTP func(length int) (string, error)
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(users UserRepository, pending PendingStore, mail MailSender, tokens *TokenCodec, opts Options) AuthService {
	return &authService{
		users:   users,
		pending: pending,
		mail:    mail,
		tokens:  tokens,
		opts:    opts,
		now:     time.Now,
		newID:   uuid.NewString,
		newOTP:  GenerateOTP,
	}
}

// Register validates the input, mails a code and records the pending
// registration. A previous pending attempt for the same email is replaced.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*IssuedToken, error) {
	email := normalizeEmail(input.Email)
	name := sanitize.Truncate(sanitize.PlainText(input.DisplayName), maxDisplayNameLen)

	if name == "" || email == "" || input.Password == "" {
		return nil, apperror.NewValidation(401, "username, mail and password are required")
	}
	if err := ValidateEmail(email); err != nil {
		return nil, apperror.NewValidation(401, msgInvalidMail)
	}
	if len(input.Password) > maxPasswordBytes {
		return nil, apperror.NewValidation(401, "password must be at most 72 bytes")
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, apperror.NewValidation(401, msgUserExists)
	}

	if err := s.pending.Delete(ctx, email); err != nil {
		return nil, apperror.NewInternal(err)
	}

	code, err := s.newOTP(s.opts.OTPLength)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("generating otp: %w", err))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	now := s.now()
	body, err := renderOTPMail(ctx, name, code, s.opts.PendingTTL, now)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if err := s.sendMail(ctx, email, body); err != nil {
		slog.Warn("otp delivery failed", slog.String("email", email), slog.Any("error", err))
		return nil, apperror.NewDeliveryFailed(msgOTPDeliveryError, err)
	}

	p := &PendingRegistration{
		DisplayName:  name,
		Email:        email,
		PasswordHash: string(hash),
		OTPCode:      code,
		SessionID:    s.newID(),
		ExpiresAt:    now.Add(s.opts.PendingTTL),
		CreatedAt:    now,
	}
	if err := s.pending.Save(ctx, p, s.opts.PendingTTL); err != nil {
		return nil, apperror.NewInternal(err)
	}

	token, err := s.tokens.Issue(p.Email, p.SessionID, p.ExpiresAt)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	slog.Info("pending registration created", slog.String("email", email))
	return &IssuedToken{Token: token, ExpiresAt: p.ExpiresAt}, nil
}

// sendMail delivers the code within the configured mail timeout.
func (s *authService) sendMail(ctx context.Context, to, body string) error {
	if s.opts.MailTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.MailTimeout)
		defer cancel()
	}
	return s.mail.SendMail(ctx, []string{to}, otpMailSubject, body)
}

// VerifyOTP checks the pending token and code, then creates the user with
// a fresh session.
func (s *authService) VerifyOTP(ctx context.Context, input VerifyOTPInput) (*Session, error) {
	token := strings.TrimSpace(input.Token)
	code := strings.TrimSpace(input.Code)
	if token == "" || code == "" {
		return nil, apperror.NewValidation(401, "SecCode and otp are required")
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, apperror.NewUnauthorized("Your OTP has expired, please register again")
		}
		return nil, apperror.NewUnauthorized("Invalid verification token")
	}

	exists, err := s.users.EmailExists(ctx, claims.Email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, apperror.NewBadRequest(msgUserExists)
	}

	p, err := s.pending.Find(ctx, claims.Email, claims.SessionID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(msgSuspicious)
		}
		return nil, apperror.NewInternal(err)
	}
	if !OTPMatches(p.OTPCode, code) {
		return nil, s.rejectOTP(ctx, p)
	}

	now := s.now()
	expiresAt := now.Add(s.opts.SessionTTL)
	user := &User{
		ID:               s.newID(),
		Email:            p.Email,
		DisplayName:      p.DisplayName,
		PasswordHash:     p.PasswordHash,
		SessionID:        s.newID(),
		SessionExpiresAt: &expiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperror.IsConflict(err) {
			return nil, apperror.NewBadRequest(msgUserExists)
		}
		return nil, apperror.NewInternal(err)
	}

	// The key also expires on its own, so a failed delete is not fatal.
	if err := s.pending.Delete(ctx, p.Email); err != nil {
		slog.Warn("failed to delete pending registration",
			slog.String("email", p.Email), slog.Any("error", err))
	}

	signed, err := s.tokens.Issue(user.Email, user.SessionID, expiresAt)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	slog.Info("user registered", slog.String("user_id", user.ID), slog.String("email", user.Email))
	return &Session{IssuedToken: IssuedToken{Token: signed, ExpiresAt: expiresAt}, User: user}, nil
}

// rejectOTP counts a wrong code. The last allowed miss discards the pending
// registration, so its token then fails as an unknown attempt.
func (s *authService) rejectOTP(ctx context.Context, p *PendingRegistration) error {
	attempts, err := s.pending.RecordMiss(ctx, p.Email, s.opts.PendingTTL)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if attempts < maxOTPAttempts {
		return apperror.NewBadRequest(msgIncorrectOTP)
	}

	slog.Warn("otp attempts exhausted", slog.String("email", p.Email), slog.Int("attempts", attempts))
	if err := s.pending.Delete(ctx, p.Email); err != nil {
		return apperror.NewInternal(err)
	}
	return apperror.NewBadRequest(msgTooManyAttempts)
}

// SignIn verifies the password and rotates the session id.
func (s *authService) SignIn(ctx context.Context, input SignInInput) (*Session, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, apperror.NewBadRequest("mail and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(msgUserNotExist)
		}
		return nil, apperror.NewInternal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.NewUnauthorized(msgWrongPassword)
	}

	now := s.now()
	expiresAt := now.Add(s.opts.SessionTTL)
	sessionID := s.newID()
	if err := s.users.UpdateSession(ctx, user.ID, sessionID, expiresAt); err != nil {
		return nil, apperror.NewInternal(err)
	}
	user.SessionID = sessionID
	user.SessionExpiresAt = &expiresAt

	signed, err := s.tokens.Issue(user.Email, sessionID, expiresAt)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	slog.Info("user signed in", slog.String("user_id", user.ID))
	return &Session{IssuedToken: IssuedToken{Token: signed, ExpiresAt: expiresAt}, User: user}, nil
}

// ValidateSession accepts a token only while it is unexpired and its session
// id is still the user's active one.
func (s *authService) ValidateSession(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, apperror.NewUnauthorized(msgSignInRequired)
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperror.NewUnauthorized(msgSignInRequired)
	}

	user, err := s.users.FindBySession(ctx, claims.Email, claims.SessionID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized(msgSignInRequired)
		}
		return nil, apperror.NewInternal(err)
	}
	return user, nil
}

// SignOut clears the active session id.
func (s *authService) SignOut(ctx context.Context, userID string) error {
	if err := s.users.ClearSession(ctx, userID); err != nil {
		return apperror.NewInternal(err)
	}
	slog.Info("user signed out", slog.String("user_id", userID))
	return nil
}
