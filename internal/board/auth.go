package board

import (
	"context"
	"fmt"

	"scrumboard/internal/apperr"
	"scrumboard/internal/client"
	"scrumboard/internal/forms"
	"scrumboard/internal/models"
)

// Landing paths after login.
const (
	AdminLanding    = "/"
	EmployeeLanding = "/profiles"
)

// LandingFor is where a user of role arrives after logging in.
func LandingFor(role models.Role) string {
	if role == models.RoleAdmin {
		return AdminLanding
	}
	return EmployeeLanding
}

// Login looks the credentials up in the users collection. The first match
// wins; no match is apperr.ErrNotFound and establishes nothing.
func (s *Service) Login(ctx context.Context, f forms.LoginForm) (models.User, error) {
	users, err := s.users.List(ctx, client.UserQuery{Email: f.Email, Password: f.Password})
	if err != nil {
		return models.User{}, fmt.Errorf("login: %w", err)
	}
	if len(users) == 0 {
		return models.User{}, fmt.Errorf("login %s: %w", f.Email, apperr.ErrNotFound)
	}
	return users[0], nil
}

// Signup creates an employee account. The role is always employee.
func (s *Service) Signup(ctx context.Context, f forms.SignupForm) (models.User, error) {
	u, err := s.users.Create(ctx, models.User{
		Name:     f.Name,
		Email:    f.Email,
		Password: f.Password,
		Role:     models.RoleEmployee,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("signup: %w", err)
	}
	return u, nil
}
