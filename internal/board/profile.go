package board

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"scrumboard/internal/client"
	"scrumboard/internal/forms"
	"scrumboard/internal/models"
	"scrumboard/internal/session"
)

// ProfileMode selects how the profile page renders.
type ProfileMode int

const (
	// EmployeeMode lists the caller's own tasks read-only.
	EmployeeMode ProfileMode = iota
	// AdminMode lists non-admin users and the history of a selected one.
	AdminMode
)

// ProfilePage is the user profile view in either mode.
type ProfilePage struct {
	Mode          ProfileMode
	Users         []models.User
	Selected      *models.User
	Tasks         []models.Task
	CanCreateUser bool
}

// Profile renders the profile page for sess. In admin mode historyFor,
// when set, selects the user whose tasks are listed; employees always see
// their own tasks and historyFor is ignored.
func (s *Service) Profile(ctx context.Context, sess *session.Session, historyFor *models.UserID) (ProfilePage, error) {
	if err := requireSession(sess); err != nil {
		return ProfilePage{}, err
	}

	if !sess.IsAdmin() {
		tasks, err := s.tasksOf(ctx, sess.User)
		if err != nil {
			return ProfilePage{}, err
		}
		return ProfilePage{Mode: EmployeeMode, Tasks: tasks}, nil
	}

	page := ProfilePage{Mode: AdminMode, CanCreateUser: true}
	var tasks []models.Task
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.users.List(gctx, client.UserQuery{ExcludeRole: models.RoleAdmin})
		if err != nil {
			return fmt.Errorf("fetch users: %w", err)
		}
		page.Users = users
		return nil
	})
	if historyFor != nil {
		g.Go(func() error {
			var err error
			tasks, err = s.tasksOf(gctx, *historyFor)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return ProfilePage{}, err
	}

	if historyFor != nil {
		for i := range page.Users {
			if page.Users[i].ID == *historyFor {
				page.Selected = &page.Users[i]
				page.Tasks = tasks
				break
			}
		}
	}
	return page, nil
}

// tasksOf filters by assignee in the store and re-checks every record
// with canonical id equality.
func (s *Service) tasksOf(ctx context.Context, id models.UserID) ([]models.Task, error) {
	fetched, err := s.tasks.List(ctx, client.ByAssignee(id))
	if err != nil {
		return nil, fmt.Errorf("fetch tasks of user %d: %w", id, err)
	}
	out := make([]models.Task, 0, len(fetched))
	for _, t := range fetched {
		if t.AssignedToUser(id) {
			out = append(out, t)
		}
	}
	return out, nil
}

// CreateUser lets an admin add an account of either role.
func (s *Service) CreateUser(ctx context.Context, sess *session.Session, f forms.UserForm) (models.User, error) {
	if err := requireAdmin(sess); err != nil {
		return models.User{}, err
	}
	u, err := s.users.Create(ctx, models.User{
		Name:     f.Name,
		Email:    f.Email,
		Password: f.Password,
		Role:     f.ParsedRole(),
	})
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}
