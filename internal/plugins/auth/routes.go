package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vishwatech/studyplan/internal/middleware"
)

// RegisterRoutes sets up all auth-related routes on the given Echo instance.
// Registration and sign-in are public and rate limited per IP.
func RegisterRoutes(e *echo.Echo, h *Handler, service AuthService) {
	g := e.Group("/auth")

	g.POST("/register", h.Register, middleware.RateLimit(5, time.Minute))
	g.POST("/register/otp", h.VerifyOTP, middleware.RateLimit(10, time.Minute))
	g.POST("/signin", h.SignIn, middleware.RateLimit(10, time.Minute))

	requireAuth := RequireAuth(service)
	g.POST("/signout", h.SignOut, requireAuth)
	g.GET("/me", h.Me, requireAuth)
	g.POST("/me", h.Me, requireAuth)
}
