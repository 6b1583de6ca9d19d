package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/middleware"
)

// Context keys for the authenticated user. Other plugins read them through
// the exported getters below.
const (
	contextKeyUser   = "auth_user"
	contextKeyUserID = middleware.ContextKeyUserID
)

// maxTokenBodyBytes caps how much of a request body is read to find SecCode.
const maxTokenBodyBytes = 1 << 20

// RequireAuth returns middleware that resolves the session token and stores
// the user in the request context. The token is taken from an
// "Authorization: Bearer" header, or else from the SecCode body field. The
// body is restored afterwards so handlers can still bind it.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := extractToken(c)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					return echo.NewHTTPError(http.StatusRequestEntityTooLarge)
				}
				return apperror.NewUnauthorized(msgSignInRequired)
			}
			if token == "" {
				return apperror.NewUnauthorized(msgSignInRequired)
			}

			user, err := service.ValidateSession(c.Request().Context(), token)
			if err != nil {
				return err
			}

			SetUser(c, user)
			return next(c)
		}
	}
}

// extractToken prefers the bearer header and falls back to the body when
// the header is absent or carries no token.
func extractToken(c echo.Context) (string, error) {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		scheme, token, _ := strings.Cut(strings.TrimSpace(h), " ")
		if strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token, nil
			}
		}
	}
	return tokenFromBody(c)
}

func tokenFromBody(c echo.Context) (string, error) {
	req := c.Request()
	if req.Body == nil || req.Body == http.NoBody {
		return "", nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), req.Body, maxTokenBodyBytes))
	if err != nil {
		return "", err
	}
	req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	if len(body) == 0 {
		return "", nil
	}

	ctype := req.Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ctype, echo.MIMEApplicationForm):
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(values.Get("SecCode")), nil
	default:
		var payload struct {
			SecCode string `json:"SecCode"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return "", err
		}
		return strings.TrimSpace(payload.SecCode), nil
	}
}

// --- Exported accessors for other plugins ---

// SetUser stores an authenticated user in the Echo context.
func SetUser(c echo.Context, user *User) {
	c.Set(contextKeyUser, user)
	c.Set(contextKeyUserID, user.ID)
}

// GetUser returns the authenticated user, or nil if RequireAuth did not run.
func GetUser(c echo.Context) *User {
	user, ok := c.Get(contextKeyUser).(*User)
	if !ok {
		return nil
	}
	return user
}

// GetUserID returns the authenticated user's id, or "" if unauthenticated.
func GetUserID(c echo.Context) string {
	id, ok := c.Get(contextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}
