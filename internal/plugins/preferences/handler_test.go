package preferences

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/middleware"
)

// asUser stands in for auth.RequireAuth in handler tests.
func asUser(userID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.ContextKeyUserID, userID)
			return next(c)
		}
	}
}

func newTestServer(userID string, svc PreferenceService) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.JSON(apperror.SafeCode(err), map[string]any{"message": apperror.SafeMessage(err)})
	}
	RegisterRoutes(e, NewHandler(svc), asUser(userID))
	return e
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CRUD(t *testing.T) {
	svc := newTestService(newMemRepo())
	e := newTestServer("user-1", svc)

	rec := serve(e, http.MethodPost, "/preferences",
		`{"SecCode":"ignored","subject":"Go","level":"expert","duration":6,"startDate":"2026-03-10","dailyStudyTime":90}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Status string `json:"status"`
		Data   struct {
			StudyPreference PreferenceResponse `json:"studyPreference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if created.Status != "success" || created.Data.StudyPreference.DailyStudyTime != 90 {
		t.Errorf("unexpected create response %s", rec.Body.String())
	}
	id := created.Data.StudyPreference.ID

	rec = serve(e, http.MethodGet, "/preferences", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"results":1`) {
		t.Errorf("list: got %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(e, http.MethodPatch, "/preferences/"+id, `{"level":"intermediate"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"level":"intermediate"`) {
		t.Errorf("update: got %d %s", rec.Code, rec.Body.String())
	}

	other := newTestServer("user-2", svc)
	if rec := serve(other, http.MethodGet, "/preferences/"+id, ""); rec.Code != http.StatusNotFound {
		t.Errorf("other user: expected 404, got %d", rec.Code)
	}

	if rec := serve(e, http.MethodDelete, "/preferences/"+id, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/preferences/"+id, ""); rec.Code != http.StatusNotFound {
		t.Errorf("after delete: expected 404, got %d", rec.Code)
	}
}

func TestHandler_CreateValidation(t *testing.T) {
	e := newTestServer("user-1", newTestService(newMemRepo()))

	rec := serve(e, http.MethodPost, "/preferences", `{"subject":"Go"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
