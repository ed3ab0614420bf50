package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"scrumboard/internal/models"
)

// UserQuery filters the users collection. Empty fields match all.
type UserQuery struct {
	Email       string
	Password    string
	Role        models.Role
	ExcludeRole models.Role
}

func (q UserQuery) values() url.Values {
	v := url.Values{}
	if q.Email != "" {
		v.Set("email", q.Email)
	}
	if q.Password != "" {
		v.Set("password", q.Password)
	}
	if q.Role != "" {
		v.Set("role", string(q.Role))
	}
	if q.ExcludeRole != "" {
		v.Set("role_ne", string(q.ExcludeRole))
	}
	return v
}

// UserStore reads and creates users.
type UserStore struct {
	c *Client
}

// List returns users matching q.
func (s *UserStore) List(ctx context.Context, q UserQuery) ([]models.User, error) {
	var users []models.User
	_, err := s.c.do(ctx, request{op: "list users", method: http.MethodGet, path: "/users", query: q.values()}, &users)
	return users, err
}

// Get fetches one user.
func (s *UserStore) Get(ctx context.Context, id models.UserID) (models.User, error) {
	var u models.User
	_, err := s.c.do(ctx, request{op: "get user", method: http.MethodGet, path: "/users/" + id.String()}, &u)
	return u, err
}

// Create stores a new user and returns the stored record.
func (s *UserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	var created models.User
	u.ID = 0
	_, err := s.c.do(ctx, request{op: "create user", method: http.MethodPost, path: "/users", body: u}, &created)
	return created, err
}

// ScrumStore reads, creates and deletes scrums.
type ScrumStore struct {
	c *Client
}

// List returns all scrums.
func (s *ScrumStore) List(ctx context.Context) ([]models.Scrum, error) {
	var scrums []models.Scrum
	_, err := s.c.do(ctx, request{op: "list scrums", method: http.MethodGet, path: "/scrums"}, &scrums)
	return scrums, err
}

// Get fetches one scrum.
func (s *ScrumStore) Get(ctx context.Context, id int64) (models.Scrum, error) {
	var sc models.Scrum
	_, err := s.c.do(ctx, request{op: "get scrum", method: http.MethodGet, path: "/scrums/" + strconv.FormatInt(id, 10)}, &sc)
	return sc, err
}

// Create stores a new scrum.
func (s *ScrumStore) Create(ctx context.Context, sc models.Scrum) (models.Scrum, error) {
	var created models.Scrum
	_, err := s.c.do(ctx, request{op: "create scrum", method: http.MethodPost, path: "/scrums", body: map[string]string{"name": sc.Name}}, &created)
	return created, err
}

// Delete removes a scrum without tasks.
func (s *ScrumStore) Delete(ctx context.Context, id int64) error {
	_, err := s.c.do(ctx, request{op: "delete scrum", method: http.MethodDelete, path: "/scrums/" + strconv.FormatInt(id, 10)}, nil)
	return err
}

// TaskQuery filters the tasks collection. Nil fields match all.
type TaskQuery struct {
	ScrumID    *int64
	AssignedTo *models.UserID
}

// ByScrum filters tasks of one scrum.
func ByScrum(id int64) TaskQuery { return TaskQuery{ScrumID: &id} }

// ByAssignee filters tasks assigned to one user.
func ByAssignee(id models.UserID) TaskQuery { return TaskQuery{AssignedTo: &id} }

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	if q.ScrumID != nil {
		v.Set("scrumId", strconv.FormatInt(*q.ScrumID, 10))
	}
	if q.AssignedTo != nil {
		v.Set("assignedTo", q.AssignedTo.String())
	}
	return v
}

// TaskStore reads, creates and updates tasks.
type TaskStore struct {
	c *Client
}

// List returns tasks matching q.
func (s *TaskStore) List(ctx context.Context, q TaskQuery) ([]models.Task, error) {
	var tasks []models.Task
	_, err := s.c.do(ctx, request{op: "list tasks", method: http.MethodGet, path: "/tasks", query: q.values()}, &tasks)
	return tasks, err
}

// Get fetches one task.
func (s *TaskStore) Get(ctx context.Context, id int64) (models.Task, error) {
	var t models.Task
	_, err := s.c.do(ctx, request{op: "get task", method: http.MethodGet, path: "/tasks/" + strconv.FormatInt(id, 10)}, &t)
	return t, err
}

// Create stores a new task.
func (s *TaskStore) Create(ctx context.Context, t models.Task) (models.Task, error) {
	var created models.Task
	t.ID = 0
	_, err := s.c.do(ctx, request{op: "create task", method: http.MethodPost, path: "/tasks", body: t}, &created)
	return created, err
}

// Patch writes the whole task record. The store only applies it while its
// history still holds expectedHistoryLen entries; a negative value skips
// the check. The returned task is the record the store confirmed.
func (s *TaskStore) Patch(ctx context.Context, t models.Task, expectedHistoryLen int) (models.Task, error) {
	header := http.Header{}
	if expectedHistoryLen >= 0 {
		header.Set("If-Match", strconv.Quote(strconv.Itoa(expectedHistoryLen)))
	}
	var updated models.Task
	_, err := s.c.do(ctx, request{
		op:     fmt.Sprintf("patch task %d", t.ID),
		method: http.MethodPatch,
		path:   "/tasks/" + strconv.FormatInt(t.ID, 10),
		header: header,
		body:   t,
	}, &updated)
	return updated, err
}
