package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"scrumboard/internal/forms"
	"scrumboard/internal/models"
	"scrumboard/internal/session"
)

// Option is one entry of the assignee picker.
type Option struct {
	ID    models.UserID
	Label string
}

// DashboardPage is the scrum list with the admin create form.
type DashboardPage struct {
	Scrums    []models.Scrum
	Assignees []Option
	CanCreate bool
}

// Dashboard fetches scrums and users concurrently.
func (s *Service) Dashboard(ctx context.Context, sess *session.Session) (DashboardPage, error) {
	var (
		page  DashboardPage
		users []models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scrums, err := s.scrums.List(gctx)
		if err != nil {
			return fmt.Errorf("fetch scrums: %w", err)
		}
		page.Scrums = scrums
		return nil
	})
	g.Go(func() error {
		var err error
		users, err = s.users.List(gctx, noUserFilter)
		if err != nil {
			return fmt.Errorf("fetch users: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return DashboardPage{}, err
	}

	page.Assignees = make([]Option, 0, len(users))
	for _, u := range users {
		page.Assignees = append(page.Assignees, Option{ID: u.ID, Label: u.Label()})
	}
	page.CanCreate = sess.IsAdmin()
	return page, nil
}

// compensationTimeout bounds the cleanup of a half-created scrum. The
// cleanup ignores cancellation of the request that started it.
const compensationTimeout = 5 * time.Second

// CreateScrum creates the scrum and its first task as one unit: when the
// task cannot be stored the scrum is deleted again.
func (s *Service) CreateScrum(ctx context.Context, sess *session.Session, f *forms.ScrumForm) (models.Scrum, models.Task, error) {
	if err := requireAdmin(sess); err != nil {
		return models.Scrum{}, models.Task{}, err
	}

	scrum, err := s.scrums.Create(ctx, models.Scrum{Name: f.ScrumName})
	if err != nil {
		return models.Scrum{}, models.Task{}, fmt.Errorf("create scrum: %w", err)
	}

	task := models.NewTask(scrum.ID, f.TaskTitle, f.TaskDescription, models.Status(f.TaskStatus), f.Assignee, s.today())
	created, err := s.tasks.Create(ctx, task)
	if err == nil {
		return scrum, created, nil
	}
	taskErr := fmt.Errorf("create task for scrum %d: %w", scrum.ID, err)

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	if derr := s.scrums.Delete(cctx, scrum.ID); derr != nil {
		s.logger.Error("scrum left without tasks",
			slog.Int64("scrum_id", scrum.ID), slog.String("error", derr.Error()))
		return models.Scrum{}, models.Task{}, errors.Join(taskErr, fmt.Errorf("remove scrum %d: %w", scrum.ID, derr))
	}
	s.logger.Warn("rolled back scrum after task failure", slog.Int64("scrum_id", scrum.ID))
	return models.Scrum{}, models.Task{}, taskErr
}
