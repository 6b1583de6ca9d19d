package plans

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

func newTestServer(userID string, svc PlanService) *echo.Echo {
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

type planEnvelope struct {
	Status string `json:"status"`
	Data   struct {
		StudyPlan PlanResponse `json:"studyPlan"`
	} `json:"data"`
}

func TestHandler_CreateGetListDelete(t *testing.T) {
	svc := newTestService(newMemRepo())
	e := newTestServer("user-1", svc)

	rec := serve(e, http.MethodPost, "/plans", `{"preferenceId":"pref-1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created planEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	plan := created.Data.StudyPlan
	if created.Status != "success" || plan.TotalModules != 12 || plan.Hours != 36 || len(plan.Weeks) != 4 {
		t.Fatalf("unexpected plan: %s", rec.Body.String())
	}
	if w := plan.Weeks[2]; len(w.Modules) != 3 || w.Project == nil || w.EstimatedHours != 9 || w.StartDate != "2026-03-16" {
		t.Errorf("unexpected week 3: %+v", w)
	}
	if plan.Weeks[0].Modules[0].StartDate != "2026-03-02" || plan.Weeks[0].Modules[0].ID == "" {
		t.Errorf("module wire form: %+v", plan.Weeks[0].Modules[0])
	}

	if rec := serve(e, http.MethodPost, "/plans", `{"preferenceId":"pref-1"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate: expected 409, got %d", rec.Code)
	}

	rec = serve(e, http.MethodGet, "/plans", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"results":1`) {
		t.Errorf("list: got %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `"weeks"`) {
		t.Errorf("listing should not carry weeks: %s", rec.Body.String())
	}

	if rec := serve(e, http.MethodGet, "/plans/"+plan.ID, ""); rec.Code != http.StatusOK {
		t.Errorf("get: expected 200, got %d", rec.Code)
	}

	other := newTestServer("user-2", svc)
	if rec := serve(other, http.MethodGet, "/plans/"+plan.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("other user: expected 404, got %d", rec.Code)
	}

	if rec := serve(e, http.MethodDelete, "/plans/"+plan.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/plans/"+plan.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("after delete: expected 404, got %d", rec.Code)
	}
}

func TestHandler_Preview(t *testing.T) {
	svc := newTestService(newMemRepo())
	e := newTestServer("user-1", svc)

	rec := serve(e, http.MethodPost, "/plans/generate", `{"lang":"python","level":"expert","weeks":8,"startDate":"2026-05-04"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got planEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.Data.StudyPlan.ID != "" || got.Data.StudyPlan.TotalModules != 16 || len(got.Data.StudyPlan.Weeks) != 8 {
		t.Errorf("unexpected preview: %s", rec.Body.String())
	}
	if len(svc.repo.(*memRepo).plans) != 0 {
		t.Error("preview must not store a plan")
	}

	if rec := serve(e, http.MethodPost, "/plans/generate", `{"lang":"python","weeks":0}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid weeks: expected 400, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodPost, "/plans/generate", `{"weeks":"many"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", rec.Code)
	}
}
