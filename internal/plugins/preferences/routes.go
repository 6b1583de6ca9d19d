package preferences

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the preference routes. Every route requires a session.
func RegisterRoutes(e *echo.Echo, h *Handler, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/preferences", requireAuth)

	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
