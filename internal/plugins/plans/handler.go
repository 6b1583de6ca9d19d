package plans

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/plugins/auth"
)

// Handler handles HTTP requests for study plans.
type Handler struct {
	service PlanService
}

// NewHandler creates a new plans handler.
func NewHandler(service PlanService) *Handler {
	return &Handler{service: service}
}

// Create handles POST /plans.
func (h *Handler) Create(c echo.Context) error {
	var req CreatePlanRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	p, err := h.service.Create(c.Request().Context(), auth.GetUserID(c), req.PreferenceID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, envelope(map[string]any{"studyPlan": p.toResponse()}))
}

// Preview handles POST /plans/generate.
func (h *Handler) Preview(c echo.Context) error {
	var req PreviewRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	p, err := h.service.Preview(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(map[string]any{"studyPlan": p.toResponse()}))
}

// List handles GET /plans.
func (h *Handler) List(c echo.Context) error {
	plans, err := h.service.List(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}

	out := make([]PlanResponse, 0, len(plans))
	for i := range plans {
		out = append(out, plans[i].toSummary())
	}
	resp := envelope(map[string]any{"studyPlans": out})
	resp["results"] = len(out)
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /plans/:id.
func (h *Handler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(map[string]any{"studyPlan": p.toResponse()}))
}

// Delete handles DELETE /plans/:id.
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func envelope(data any) map[string]any {
	return map[string]any{"status": "success", "data": data}
}
