package board

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"scrumboard/internal/apperr"
	"scrumboard/internal/client"
	"scrumboard/internal/forms"
	"scrumboard/internal/models"
	"scrumboard/internal/session"
)

var noUserFilter = client.UserQuery{}

// DetailPage shows one scrum, its tasks and the users working on them.
type DetailPage struct {
	Scrum         models.Scrum
	Tasks         []models.Task
	Users         []models.User
	CanEditStatus bool
	Statuses      []models.Status
}

// ScrumDetail fetches the scrum, its tasks and all users concurrently and
// keeps the users that are assigned at least one of the tasks.
func (s *Service) ScrumDetail(ctx context.Context, sess *session.Session, scrumID int64) (DetailPage, error) {
	if err := requireSession(sess); err != nil {
		return DetailPage{}, err
	}

	var (
		page  DetailPage
		users []models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scrum, err := s.scrums.Get(gctx, scrumID)
		if err != nil {
			return fmt.Errorf("fetch scrum %d: %w", scrumID, err)
		}
		page.Scrum = scrum
		return nil
	})
	g.Go(func() error {
		tasks, err := s.tasks.List(gctx, client.ByScrum(scrumID))
		if err != nil {
			return fmt.Errorf("fetch tasks of scrum %d: %w", scrumID, err)
		}
		page.Tasks = tasks
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
		return DetailPage{}, err
	}

	page.Users = involvedUsers(users, page.Tasks)
	page.CanEditStatus = sess.IsAdmin()
	page.Statuses = models.Statuses
	return page, nil
}

// involvedUsers keeps, in order, the users some task is assigned to.
func involvedUsers(users []models.User, tasks []models.Task) []models.User {
	assigned := make(map[models.UserID]struct{}, len(tasks))
	for _, t := range tasks {
		assigned[t.AssignedTo] = struct{}{}
	}
	out := make([]models.User, 0, len(assigned))
	for _, u := range users {
		if _, ok := assigned[u.ID]; ok {
			out = append(out, u)
		}
	}
	return out
}

// ChangeStatus moves a task of scrumID to a new status, appending a
// history entry dated today. The store only applies the change if nobody
// moved the task since it was read, and the record it confirms is returned.
func (s *Service) ChangeStatus(ctx context.Context, sess *session.Session, scrumID, taskID int64, f forms.StatusForm) (models.Task, error) {
	if err := requireAdmin(sess); err != nil {
		return models.Task{}, err
	}

	current, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return models.Task{}, fmt.Errorf("fetch task %d: %w", taskID, err)
	}
	if current.ScrumID != scrumID {
		return models.Task{}, fmt.Errorf("task %d in scrum %d: %w", taskID, scrumID, apperr.ErrNotFound)
	}
	if f.Revision != 0 && f.Revision != len(current.History) {
		return models.Task{}, fmt.Errorf("task %d changed since the page was loaded: %w", taskID, apperr.ErrConflict)
	}

	next := current.WithStatus(f.ParsedStatus(), s.today())
	confirmed, err := s.tasks.Patch(ctx, next, len(current.History))
	if err != nil {
		return models.Task{}, fmt.Errorf("update task %d: %w", taskID, err)
	}
	return confirmed, nil
}
