package leaderboard

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the leaderboard routes. Boards are public; the
// caller's own standing and activity reporting require a session.
func RegisterRoutes(e *echo.Echo, h *Handler, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/leaderboard")

	g.GET("/:subject", h.List)
	g.GET("/:subject/country/:country", h.List)
	g.GET("/:subject/country/:country/state/:state", h.List)
	g.GET("/:subject/country/:country/state/:state/city/:city", h.List)

	g.GET("/:subject/me", h.Me, requireAuth)
	g.POST("/:subject/activity", h.RecordActivity, requireAuth)
}
