// Package auth implements registration with emailed one-time codes, password
// sign-in and the session gate that protects the rest of the API.
//
// A session is a signed token carrying {mail, uid}. The uid must match the
// user's active session id in MariaDB, so minting a new session id (sign-in,
// OTP verification, sign-out) revokes every token issued before it.
package auth

import (
	"time"
)

// User is a verified account. Email is unique.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"mail"`
	DisplayName      string     `json:"username"`
	PasswordHash     string     `json:"-"`
	Points           int        `json:"points"`
	Rank             int        `json:"rank"`
	SessionID        string     `json:"-"`
	SessionExpiresAt *time.Time `json:"expiry,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PendingRegistration holds unverified sign-up data until the emailed code is
// confirmed. Stored JSON-encoded in Redis under the email, so there is at most
// one per address.
type PendingRegistration struct {
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	OTPCode      string    `json:"otp_code"`
	SessionID    string    `json:"session_id"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// --- Request DTOs (bound from HTTP requests) ---
// Field names match the existing frontend.

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Mail     string `json:"mail" form:"mail"`
	Password string `json:"password" form:"password"`
}

// VerifyOTPRequest is the body of POST /auth/register/otp.
type VerifyOTPRequest struct {
	SecCode string `json:"SecCode" form:"SecCode"`
	OTP     string `json:"otp" form:"otp"`
}

// SignInRequest is the body of POST /auth/signin.
type SignInRequest struct {
	Mail     string `json:"mail" form:"mail"`
	Password string `json:"password" form:"password"`
}

// --- Response DTOs ---

// RegisterResponse is returned after the code has been mailed.
type RegisterResponse struct {
	Message string `json:"message"`
	SecCode string `json:"SecCode"`
}

// VerifyOTPResponse is returned after a successful verification.
type VerifyOTPResponse struct {
	Redirect string `json:"redirect"`
	Message  string `json:"message"`
	SecCode  string `json:"SecCode"`
}

// SignInResponse is returned after a successful sign-in.
type SignInResponse struct {
	Username string `json:"username"`
	Mail     string `json:"mail"`
	Expiry   string `json:"expiry"`
	SecCode  string `json:"SecCode"`
	Redirect string `json:"redirect"`
	Message  string `json:"message"`
	Status   bool   `json:"status"`
}

// ProfileResponse describes the signed-in user.
type ProfileResponse struct {
	Username string `json:"username"`
	Mail     string `json:"mail"`
	Points   int    `json:"points"`
	Rank     int    `json:"rank"`
	Expiry   string `json:"expiry,omitempty"`
	Status   bool   `json:"status"`
}

// --- Service Input DTOs (passed from handler to service) ---

// RegisterInput starts a registration.
type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
}

// VerifyOTPInput completes a registration.
type VerifyOTPInput struct {
	Token string
	Code  string
}

// SignInInput authenticates an existing user.
type SignInInput struct {
	Email    string
	Password string
}

// --- Service results ---

// IssuedToken is a signed token and the instant it stops being accepted.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Session is the result of a successful OTP verification or sign-in.
type Session struct {
	IssuedToken
	User *User
}
