package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vishwatech/studyplan/internal/apperror"
)

// Handler handles HTTP requests for authentication.
// Handlers are thin: bind request, call service, return response.
type Handler struct {
	service AuthService
}

// NewHandler creates a new auth handler.
func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

// Register starts a registration and mails the code (POST /auth/register).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation(http.StatusUnauthorized, "invalid request body")
	}

	issued, err := h.service.Register(c.Request().Context(), RegisterInput{
		DisplayName: req.Username,
		Email:       req.Mail,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, RegisterResponse{
		Message: "Your OTP has been sent on " + normalizeEmail(req.Mail),
		SecCode: issued.Token,
	})
}

// VerifyOTP completes a registration (POST /auth/register/otp).
func (h *Handler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation(http.StatusUnauthorized, "invalid request body")
	}

	session, err := h.service.VerifyOTP(c.Request().Context(), VerifyOTPInput{
		Token: req.SecCode,
		Code:  req.OTP,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, VerifyOTPResponse{
		Redirect: "/",
		Message:  "Verification Successful",
		SecCode:  session.Token,
	})
}

// SignIn authenticates with email and password (POST /auth/signin).
func (h *Handler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	session, err := h.service.SignIn(c.Request().Context(), SignInInput{
		Email:    req.Mail,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, SignInResponse{
		Username: session.User.DisplayName,
		Mail:     session.User.Email,
		Expiry:   session.ExpiresAt.UTC().Format(time.RFC3339),
		SecCode:  session.Token,
		Redirect: "/",
		Message:  "SignIn Successful",
		Status:   true,
	})
}

// SignOut revokes the current session (POST /auth/signout).
func (h *Handler) SignOut(c echo.Context) error {
	if err := h.service.SignOut(c.Request().Context(), GetUserID(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Signed out",
		"status":  true,
	})
}

// Me describes the signed-in user (GET or POST /auth/me).
func (h *Handler) Me(c echo.Context) error {
	user := GetUser(c)
	if user == nil {
		return apperror.NewUnauthorized(msgSignInRequired)
	}

	resp := ProfileResponse{
		Username: user.DisplayName,
		Mail:     user.Email,
		Points:   user.Points,
		Rank:     user.Rank,
		Status:   true,
	}
	if user.SessionExpiresAt != nil {
		resp.Expiry = user.SessionExpiresAt.UTC().Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}
