package quiz

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/plugins/auth"
)

// Handler handles HTTP requests for quizzes.
type Handler struct {
	service QuizService
}

// NewHandler creates a new quiz handler.
func NewHandler(service QuizService) *Handler {
	return &Handler{service: service}
}

// Create handles POST /quizzes.
func (h *Handler) Create(c echo.Context) error {
	var req CreateQuizRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	q, err := h.service.Create(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, envelope(map[string]any{"quiz": q.toResponse()}))
}

// Get handles GET /quizzes/:id.
func (h *Handler) Get(c echo.Context) error {
	q, err := h.service.Get(c.Request().Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(map[string]any{"quiz": q.toResponse()}))
}

// Submit handles POST /quizzes/:id/submit. The score is computed from the
// stored quiz; anything else in the body is ignored.
func (h *Handler) Submit(c echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	user := auth.GetUser(c)
	if user == nil {
		return apperror.NewUnauthorized("You need to sign in")
	}

	res, err := h.service.Submit(c.Request().Context(), user.ID, user.DisplayName, c.Param("id"), req.Answers)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(map[string]any{"result": res.toResponse()}))
}

// Attempts handles GET /quizzes/:id/attempts.
func (h *Handler) Attempts(c echo.Context) error {
	attempts, err := h.service.Attempts(c.Request().Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	if attempts == nil {
		attempts = []Attempt{}
	}
	resp := envelope(map[string]any{"attempts": attempts})
	resp["results"] = len(attempts)
	return c.JSON(http.StatusOK, resp)
}

func envelope(data any) map[string]any {
	return map[string]any{"status": "success", "data": data}
}
