package leaderboard

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/plugins/auth"
)

// Handler handles HTTP requests for leaderboards.
type Handler struct {
	service LeaderboardService
}

// NewHandler creates a new leaderboard handler.
func NewHandler(service LeaderboardService) *Handler {
	return &Handler{service: service}
}

// List serves the global board and its country, state and city variants.
// Absent path parameters widen the scope.
func (h *Handler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return apperror.NewBadRequest("limit must be a positive integer")
		}
		limit = n
	}

	entries, err := h.service.Top(c.Request().Context(), pathParam(c, "subject"), Scope{
		Country: pathParam(c, "country"),
		State:   pathParam(c, "state"),
		City:    pathParam(c, "city"),
	}, limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []Entry{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(entries),
		"data":    map[string]any{"leaderboard": entries},
	})
}

// Me returns the signed-in user's rank (GET /leaderboard/:subject/me).
func (h *Handler) Me(c echo.Context) error {
	standing, err := h.service.Standing(c.Request().Context(), auth.GetUserID(c), pathParam(c, "subject"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "data": standing})
}

// RecordActivity handles POST /leaderboard/:subject/activity. Score fields
// in the body are ignored.
func (h *Handler) RecordActivity(c echo.Context) error {
	var req ActivityRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	user := auth.GetUser(c)
	if user == nil {
		return apperror.NewUnauthorized("You need to sign in")
	}

	entry, err := h.service.RecordActivity(c.Request().Context(), user.ID, user.DisplayName, pathParam(c, "subject"), Activity{
		StudyMinutes: req.StudyMinutes,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "data": map[string]any{"entry": entry}})
}

// pathParam returns a decoded path parameter, so "data%20science" matches
// the stored subject "data science".
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
