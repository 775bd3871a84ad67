package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"kanbanApi/internal/modules/boards/application/usecase"
	"kanbanApi/internal/modules/boards/domain"
	"kanbanApi/internal/modules/boards/infrastructure"
	rtdomain "kanbanApi/internal/modules/realtime/domain"
	"kanbanApi/internal/shared/session"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []rtdomain.ChangeEvent
}

func (n *recordingNotifier) Execute(_ context.Context, evt rtdomain.ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
}

func (n *recordingNotifier) last(t *testing.T) rtdomain.ChangeEvent {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		t.Fatalf("no change event emitted")
	}
	return n.events[len(n.events)-1]
}

// identityFromHeader stands in for the auth middleware.
func identityFromHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := c.Request().Header.Get("X-User"); id != "" {
			ctx := session.WithIdentity(c.Request().Context(), &session.Identity{ID: id, Fullname: "user " + id})
			c.SetRequest(c.Request().WithContext(ctx))
		}
		return next(c)
	}
}

func newServer(t *testing.T) (*echo.Echo, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	svc := usecase.NewBoardService(infrastructure.NewMemoryBoardRepository(), nil)
	e := echo.New()
	NewBoardHandler(svc, notifier).Register(e.Group("/api/board", identityFromHeader))
	return e, notifier
}

func do(t *testing.T, e *echo.Echo, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set("X-User", user)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestCreateThenForeignTaskUpdateBroadcastsToTopic(t *testing.T) {
	t.Parallel()

	e, notifier := newServer(t)

	rec := do(t, e, http.MethodPost, "/api/board", "A", `{"title":"Launch","label":"Step"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create board: %d %s", rec.Code, rec.Body.String())
	}
	board := decode[domain.Board](t, rec)
	if board.ID.IsZero() {
		t.Fatalf("expected _id in response")
	}
	if len(board.Activities) != 1 || board.Activities[0].Action != domain.ActionCreate || board.Activities[0].UserID != "A" {
		t.Fatalf("unexpected activities %+v", board.Activities)
	}
	if evt := notifier.last(t); evt.Kind != rtdomain.BoardAdded || evt.ActingUserID != "A" {
		t.Fatalf("unexpected event %+v", evt)
	}

	group := board.Groups[0]
	path := "/api/board/" + board.ID.Hex() + "/" + group.ID + "/" + group.Tasks[0].ID
	rec = do(t, e, http.MethodPut, path, "C", `{"status":"Stuck"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update task: %d %s", rec.Code, rec.Body.String())
	}
	task := decode[domain.Task](t, rec)
	if task.Status != "Stuck" {
		t.Fatalf("unexpected task %+v", task)
	}

	evt := notifier.last(t)
	if evt.Kind != rtdomain.TaskChanged || evt.Topic != board.ID.Hex() || evt.ActingUserID != "C" {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestCommentRoutesResolveContainers(t *testing.T) {
	t.Parallel()

	e, notifier := newServer(t)
	board := decode[domain.Board](t, do(t, e, http.MethodPost, "/api/board", "A", `{"title":"b"}`))
	base := "/api/board/" + board.ID.Hex()
	group := board.Groups[1]

	paths := []string{
		base + "/comment",
		base + "/" + group.ID + "/comment",
		base + "/" + group.ID + "/" + group.Tasks[0].ID + "/comment",
	}
	for _, p := range paths {
		rec := do(t, e, http.MethodPost, p, "A", `{"title":"hello"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("POST %s: %d %s", p, rec.Code, rec.Body.String())
		}
		if evt := notifier.last(t); evt.Kind != rtdomain.CommentAdded {
			t.Fatalf("unexpected event %+v", evt)
		}
		comments := decode[[]domain.Comment](t, do(t, e, http.MethodGet, p, "A", ""))
		if len(comments) != 1 || comments[0].ByMember.ID != "A" {
			t.Fatalf("GET %s: unexpected comments %+v", p, comments)
		}
	}
}

func TestForeignCommentDeleteIsRejected(t *testing.T) {
	t.Parallel()

	e, notifier := newServer(t)
	board := decode[domain.Board](t, do(t, e, http.MethodPost, "/api/board", "A", `{"title":"b"}`))
	group := board.Groups[0]
	taskPath := "/api/board/" + board.ID.Hex() + "/" + group.ID + "/" + group.Tasks[0].ID
	comment := decode[domain.Comment](t, do(t, e, http.MethodPost, taskPath+"/comment", "A", `{"title":"mine"}`))
	events := len(notifier.events)

	rec := do(t, e, http.MethodDelete, taskPath+"/"+comment.ID, "B", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
	}
	if body := decode[map[string]string](t, rec); body["err"] == "" {
		t.Fatalf("expected err body, got %v", body)
	}
	if len(notifier.events) != events {
		t.Fatalf("rejected delete must not broadcast")
	}
	comments := decode[[]domain.Comment](t, do(t, e, http.MethodGet, taskPath+"/comment", "B", ""))
	if len(comments) != 1 {
		t.Fatalf("comment list changed: %+v", comments)
	}

	rec = do(t, e, http.MethodDelete, taskPath+"/"+comment.ID, "A", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("author delete: %d %s", rec.Code, rec.Body.String())
	}
	if evt := notifier.last(t); evt.Kind != rtdomain.CommentRemoved || evt.Payload != comment.ID {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestErrorsMapToStatus(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)
	board := decode[domain.Board](t, do(t, e, http.MethodPost, "/api/board", "A", `{"title":"b"}`))

	cases := map[string]struct {
		method, path, user, body string
		want                     int
	}{
		"unknown board":    {http.MethodGet, "/api/board/000000000000000000000000", "A", "", http.StatusBadRequest},
		"malformed id":     {http.MethodGet, "/api/board/nope", "A", "", http.StatusBadRequest},
		"unknown group":    {http.MethodPost, "/api/board/" + board.ID.Hex() + "/missing/task", "A", `{}`, http.StatusBadRequest},
		"no identity":      {http.MethodPost, "/api/board/" + board.ID.Hex() + "/group", "", `{}`, http.StatusUnauthorized},
		"empty title":      {http.MethodPut, "/api/board/" + board.ID.Hex(), "A", `{"title":""}`, http.StatusBadRequest},
		"bad page index":   {http.MethodGet, "/api/board?pageIdx=x", "A", "", http.StatusBadRequest},
		"activities found": {http.MethodGet, "/api/board/" + board.ID.Hex() + "/activities", "A", "", http.StatusOK},
	}
	for name, tc := range cases {
		rec := do(t, e, tc.method, tc.path, tc.user, tc.body)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d %s", name, tc.want, rec.Code, rec.Body.String())
		}
	}
}

func TestRemoveBoardBroadcastsID(t *testing.T) {
	t.Parallel()

	e, notifier := newServer(t)
	board := decode[domain.Board](t, do(t, e, http.MethodPost, "/api/board", "A", `{"title":"b"}`))

	rec := do(t, e, http.MethodDelete, "/api/board/"+board.ID.Hex(), "A", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("remove: %d %s", rec.Code, rec.Body.String())
	}
	evt := notifier.last(t)
	if evt.Kind != rtdomain.BoardRemoved || evt.Payload != board.ID.Hex() || evt.Topic != board.ID.Hex() {
		t.Fatalf("unexpected event %+v", evt)
	}
	boards := decode[[]domain.Board](t, do(t, e, http.MethodGet, "/api/board", "A", ""))
	if len(boards) != 0 {
		t.Fatalf("expected no boards, got %d", len(boards))
	}
}

func TestBoardAndGroupUpdatesCannotRewriteComments(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)
	board := decode[domain.Board](t, do(t, e, http.MethodPost, "/api/board", "A", `{"title":"b"}`))
	base := "/api/board/" + board.ID.Hex()
	group := board.Groups[0]
	taskPath := base + "/" + group.ID + "/" + group.Tasks[0].ID
	do(t, e, http.MethodPost, taskPath+"/comment", "A", `{"title":"mine"}`)

	stored := decode[domain.Board](t, do(t, e, http.MethodGet, base, "B", ""))
	stored.Groups[0].Tasks[0].Comments[0].Title = "rewritten by B"
	stored.Groups[0].Tasks[0].Comments[0].Activities = nil
	body, err := json.Marshal(map[string]any{"groups": stored.Groups})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if rec := do(t, e, http.MethodPut, base, "B", string(body)); rec.Code != http.StatusOK {
		t.Fatalf("board update: %d %s", rec.Code, rec.Body.String())
	}

	tasks := stored.Groups[0].Tasks
	tasks[0].Comments = []domain.Comment{}
	body, err = json.Marshal(map[string]any{"tasks": tasks})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if rec := do(t, e, http.MethodPut, base+"/"+group.ID, "B", string(body)); rec.Code != http.StatusOK {
		t.Fatalf("group update: %d %s", rec.Code, rec.Body.String())
	}

	comments := decode[[]domain.Comment](t, do(t, e, http.MethodGet, taskPath+"/comment", "B", ""))
	if len(comments) != 1 || comments[0].Title != "mine" || comments[0].ByMember.ID != "A" {
		t.Fatalf("comment list changed: %+v", comments)
	}
	if len(comments[0].Activities) != 1 {
		t.Fatalf("comment activities = %d, want 1", len(comments[0].Activities))
	}
}

func TestLogActivityRoute(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)
	board := decode[domain.Board](t, do(t, e, http.MethodPost, "/api/board", "A", `{"title":"b"}`))
	path := "/api/board/" + board.ID.Hex() + "/activities"
	task := board.Groups[0].Tasks[0]

	rec := do(t, e, http.MethodPost, path, "B", `{"action":"update","entity":"task","entityId":"`+task.ID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("log activity: %d %s", rec.Code, rec.Body.String())
	}
	for _, body := range []string{
		`{"action":"rename","entity":"task","entityId":"x"}`,
		`{"action":"update","entity":"column","entityId":"x"}`,
		`{"action":"update","entity":"task"}`,
	} {
		if rec := do(t, e, http.MethodPost, path, "B", body); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
	if rec := do(t, e, http.MethodPost, path, "", `{"action":"update","entity":"board","entityId":"b"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous log: expected 401, got %d", rec.Code)
	}

	activities := decode[[]domain.Activity](t, do(t, e, http.MethodGet, path, "A", ""))
	if len(activities) != 2 || activities[1].UserID != "B" || activities[1].EntityID != task.ID {
		t.Fatalf("unexpected activities %+v", activities)
	}
}
