package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"kanbanApi/internal/modules/users/application/usecase"
	"kanbanApi/internal/modules/users/domain"
	"kanbanApi/internal/modules/users/infrastructure"
)

func newUserServer(t *testing.T) (*echo.Echo, *domain.User) {
	t.Helper()
	svc := usecase.NewUserService(infrastructure.NewMemoryUserRepository())
	user, err := svc.Add(context.Background(), domain.User{Email: "ada@example.com", Password: "hash", Fullname: "Ada Lovelace"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := svc.Add(context.Background(), domain.User{Email: "alan@example.com", Password: "hash", Fullname: "Alan Turing"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	e := echo.New()
	NewUserHandler(svc).Register(e.Group("/api/user"))
	return e, user
}

func doUser(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestUserHandlerQueryFiltersAndHidesPasswords(t *testing.T) {
	t.Parallel()

	e, _ := newUserServer(t)
	rec := doUser(e, http.MethodGet, "/api/user?txt=ada", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") || strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password leaked: %s", rec.Body.String())
	}
	var users []domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users) != 1 || users[0].Fullname != "Ada Lovelace" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestUserHandlerUpdateAndRemove(t *testing.T) {
	t.Parallel()

	e, user := newUserServer(t)
	path := "/api/user/" + user.ID.Hex()

	rec := doUser(e, http.MethodPut, path, `{"fullname":"Ada King","score":7}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Fullname != "Ada King" || updated.Score != 7 || updated.Email != "ada@example.com" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	rec = doUser(e, http.MethodPut, path, `{"fullname":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty fullname, got %d", rec.Code)
	}

	rec = doUser(e, http.MethodDelete, path, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Deleted successfully") {
		t.Fatalf("unexpected delete response %d: %s", rec.Code, rec.Body.String())
	}

	rec = doUser(e, http.MethodGet, path, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 after removal, got %d", rec.Code)
	}
}

func TestUserHandlerRejectsMalformedID(t *testing.T) {
	t.Parallel()

	e, _ := newUserServer(t)
	rec := doUser(e, http.MethodGet, "/api/user/not-an-id", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"err"`) {
		t.Fatalf("expected err body, got %s", rec.Body.String())
	}
}
