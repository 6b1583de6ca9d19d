package quiz

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the quiz routes. Every route requires a session.
func RegisterRoutes(e *echo.Echo, h *Handler, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/quizzes", requireAuth)

	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/submit", h.Submit)
	g.GET("/:id/attempts", h.Attempts)
}
