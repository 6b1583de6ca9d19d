package preferences

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/plugins/auth"
)

// Handler handles HTTP requests for study preferences.
type Handler struct {
	service PreferenceService
}

// NewHandler creates a new preferences handler.
func NewHandler(service PreferenceService) *Handler {
	return &Handler{service: service}
}

// Create handles POST /preferences.
func (h *Handler) Create(c echo.Context) error {
	var req CreatePreferenceRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	p, err := h.service.Create(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, envelope(map[string]any{"studyPreference": p.toResponse()}))
}

// List handles GET /preferences.
func (h *Handler) List(c echo.Context) error {
	prefs, err := h.service.List(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}

	out := make([]PreferenceResponse, 0, len(prefs))
	for i := range prefs {
		out = append(out, prefs[i].toResponse())
	}
	resp := envelope(map[string]any{"studyPreferences": out})
	resp["results"] = len(out)
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /preferences/:id.
func (h *Handler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(map[string]any{"studyPreference": p.toResponse()}))
}

// Update handles PATCH /preferences/:id.
func (h *Handler) Update(c echo.Context) error {
	var req UpdatePreferenceRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	p, err := h.service.Update(c.Request().Context(), auth.GetUserID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(map[string]any{"studyPreference": p.toResponse()}))
}

// Delete handles DELETE /preferences/:id.
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func envelope(data any) map[string]any {
	return map[string]any{"status": "success", "data": data}
}
