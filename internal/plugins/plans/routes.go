package plans

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the plan routes. Every route requires a session.
func RegisterRoutes(e *echo.Echo, h *Handler, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/plans", requireAuth)

	g.POST("", h.Create)
	g.POST("/generate", h.Preview)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
}
