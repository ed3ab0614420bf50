package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"scrumboard/internal/models"
	"scrumboard/internal/storage/sqlite"
)

func newTestServer(t *testing.T, name string) *Server {
	t.Helper()
	store, err := sqlite.Open("file:"+name+"?mode=memory&cache=shared", nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	srv := New(store, nil)
	srv.now = func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) }
	return srv
}

func do(t *testing.T, srv *Server, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestUserCollection(t *testing.T) {
	srv := newTestServer(t, "srvusers")

	rec := do(t, srv, http.MethodPost, "/users", map[string]any{"name": "Ann", "email": "ann@example.com", "password": "secret1", "role": "employee"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user: %d %s", rec.Code, rec.Body)
	}
	do(t, srv, http.MethodPost, "/users", map[string]any{"name": "Root", "email": "root@example.com", "password": "secret1", "role": "admin"}, nil)

	rec = do(t, srv, http.MethodGet, "/users?email=ann@example.com&password=secret1", nil, nil)
	users := decode[[]models.User](t, rec)
	if len(users) != 1 || users[0].Name != "Ann" {
		t.Fatalf("credential filter: %+v", users)
	}

	rec = do(t, srv, http.MethodGet, "/users?email=ann@example.com&password=", nil, nil)
	if users := decode[[]models.User](t, rec); len(users) != 0 {
		t.Fatalf("empty password must be compared, got %+v", users)
	}
	rec = do(t, srv, http.MethodGet, "/users?email=ann@example.com", nil, nil)
	if users := decode[[]models.User](t, rec); len(users) != 1 {
		t.Fatalf("absent password must not filter, got %+v", users)
	}

	rec = do(t, srv, http.MethodGet, "/users?role_ne=admin", nil, nil)
	users = decode[[]models.User](t, rec)
	if len(users) != 1 || users[0].Role != models.RoleEmployee {
		t.Fatalf("role_ne filter: %+v", users)
	}

	rec = do(t, srv, http.MethodGet, "/users?role=owner", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown role filter: %d", rec.Code)
	}

	rec = do(t, srv, http.MethodPost, "/users", map[string]any{"name": "", "email": "x@example.com", "password": "p"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid user: %d", rec.Code)
	}
}

func TestScrumAndTaskLifecycle(t *testing.T) {
	srv := newTestServer(t, "srvtasks")

	rec := do(t, srv, http.MethodPost, "/scrums", map[string]any{"name": "Sprint 1"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create scrum: %d %s", rec.Code, rec.Body)
	}
	scrum := decode[models.Scrum](t, rec)

	rec = do(t, srv, http.MethodGet, "/scrums/999", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing scrum: %d", rec.Code)
	}

	// assignedTo arrives as a string and is stored as a number.
	rec = do(t, srv, http.MethodPost, "/tasks", map[string]any{
		"title": "Fix bug", "description": "crash", "status": "To Do", "scrumId": scrum.ID, "assignedTo": "3",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: %d %s", rec.Code, rec.Body)
	}
	task := decode[models.Task](t, rec)

	for _, bad := range []any{0, -3, "0"} {
		rej := do(t, srv, http.MethodPost, "/tasks", map[string]any{
			"title": "Orphan", "description": "x", "status": "To Do", "scrumId": scrum.ID, "assignedTo": bad,
		}, nil)
		if rej.Code != http.StatusBadRequest {
			t.Fatalf("assignedTo %v: expected 400, got %d", bad, rej.Code)
		}
	}

	if task.AssignedTo != 3 || len(task.History) != 1 || task.History[0].Date.String() != "2026-10-14" {
		t.Fatalf("unexpected task: %+v", task)
	}
	if rec.Header().Get("ETag") != `"1"` {
		t.Fatalf("etag = %q", rec.Header().Get("ETag"))
	}

	rec = do(t, srv, http.MethodGet, "/tasks?assignedTo=3", nil, nil)
	if tasks := decode[[]models.Task](t, rec); len(tasks) != 1 {
		t.Fatalf("assignee filter: %+v", tasks)
	}
	rec = do(t, srv, http.MethodGet, "/tasks?scrumId=999", nil, nil)
	if tasks := decode[[]models.Task](t, rec); len(tasks) != 0 {
		t.Fatalf("scrum filter: %+v", tasks)
	}

	moved := task.WithStatus(models.StatusInProgress, models.DateOf(srv.now()))
	rec = do(t, srv, http.MethodPatch, "/tasks/"+itoa(task.ID), moved, map[string]string{"If-Match": `"1"`})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rec.Code, rec.Body)
	}
	if got := decode[models.Task](t, rec); got.Status != models.StatusInProgress || len(got.History) != 2 {
		t.Fatalf("patched: %+v", got)
	}

	rec = do(t, srv, http.MethodPatch, "/tasks/"+itoa(task.ID), moved, map[string]string{"If-Match": `"1"`})
	if rec.Code != http.StatusPreconditionFailed {
		t.Fatalf("stale patch: %d", rec.Code)
	}

	rec = do(t, srv, http.MethodDelete, "/scrums/"+itoa(scrum.ID), nil, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete referenced scrum: %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, "srvhealth")
	if rec := do(t, srv, http.MethodGet, "/healthz", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/nope", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("no route: %d", rec.Code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
