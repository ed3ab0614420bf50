// Package board holds the view logic of the scrum board: what each page
// fetches, which controls a role sees and how admin actions are carried
// out against the store. It knows nothing about HTML.
package board

import (
	"context"
	"log/slog"
	"time"

	"scrumboard/internal/apperr"
	"scrumboard/internal/client"
	"scrumboard/internal/models"
	"scrumboard/internal/session"
)

// UserStore is the users collection as the board uses it.
type UserStore interface {
	List(ctx context.Context, q client.UserQuery) ([]models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
}

// ScrumStore is the scrums collection as the board uses it.
type ScrumStore interface {
	List(ctx context.Context) ([]models.Scrum, error)
	Get(ctx context.Context, id int64) (models.Scrum, error)
	Create(ctx context.Context, sc models.Scrum) (models.Scrum, error)
	Delete(ctx context.Context, id int64) error
}

// TaskStore is the tasks collection as the board uses it.
type TaskStore interface {
	List(ctx context.Context, q client.TaskQuery) ([]models.Task, error)
	Get(ctx context.Context, id int64) (models.Task, error)
	Create(ctx context.Context, t models.Task) (models.Task, error)
	Patch(ctx context.Context, t models.Task, expectedHistoryLen int) (models.Task, error)
}

// Service runs the board views against the three collections.
type Service struct {
	users  UserStore
	scrums ScrumStore
	tasks  TaskStore
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Service. A nil logger falls back to slog.Default.
func New(users UserStore, scrums ScrumStore, tasks TaskStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, scrums: scrums, tasks: tasks, logger: logger, now: time.Now}
}

// NewFromClient wires a Service to the store accessors of c.
func NewFromClient(c *client.Client, logger *slog.Logger) *Service {
	return New(c.Users(), c.Scrums(), c.Tasks(), logger)
}

func (s *Service) today() models.Date {
	return models.DateOf(s.now())
}

func requireSession(sess *session.Session) error {
	if sess == nil || sess.User == 0 {
		return apperr.ErrUnauthenticated
	}
	return nil
}

func requireAdmin(sess *session.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if !sess.IsAdmin() {
		return apperr.ErrForbidden
	}
	return nil
}
