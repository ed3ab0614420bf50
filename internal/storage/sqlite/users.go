package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"scrumboard/internal/apperr"
	"scrumboard/internal/models"
)

// UserFilter restricts ListUsers by field equality. Empty fields match all,
// except that MatchEmail and MatchPassword compare the field even when the
// wanted value is empty.
type UserFilter struct {
	Email       string
	Password    string
	Role        models.Role
	ExcludeRole models.Role

	MatchEmail    bool
	MatchPassword bool
}

// ListUsers returns users matching every filter field in use, ordered by id.
func (s *Store) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	var (
		where []string
		args  []any
	)
	if f.Email != "" || f.MatchEmail {
		where = append(where, "email = ?")
		args = append(args, f.Email)
	}
	if f.Password != "" || f.MatchPassword {
		where = append(where, "password = ?")
		args = append(args, f.Password)
	}
	if f.Role != "" {
		where = append(where, "role = ?")
		args = append(args, string(f.Role))
	}
	if f.ExcludeRole != "" {
		where = append(where, "role <> ?")
		args = append(args, string(f.ExcludeRole))
	}

	query := `SELECT id, name, email, password, role FROM users`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUser fetches a single user by id.
func (s *Store) GetUser(ctx context.Context, id models.UserID) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `SELECT id, name, email, password, role FROM users WHERE id = ?`, int64(id)).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, notFound("user", int64(id))
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// CreateUser persists a new user. Email uniqueness is not enforced.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	ve := apperr.NewValidationError()
	if strings.TrimSpace(u.Name) == "" {
		ve.Set("name", "name must not be empty")
	}
	if strings.TrimSpace(u.Email) == "" {
		ve.Set("email", "email must not be empty")
	}
	if u.Password == "" {
		ve.Set("password", "password must not be empty")
	}
	if u.Role == "" {
		u.Role = models.RoleEmployee
	}
	if !u.Role.Valid() {
		ve.Set("role", fmt.Sprintf("unknown role %q", u.Role))
	}
	if !ve.Empty() {
		return models.User{}, ve
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO users(name, email, password, role) VALUES(?, ?, ?, ?)`,
		strings.TrimSpace(u.Name), strings.TrimSpace(u.Email), u.Password, string(u.Role))
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("user id: %w", err)
	}
	return s.GetUser(ctx, models.UserID(id))
}

// EnsureAdmin creates an admin account unless a user with the email exists.
// It reports whether a user was created.
func (s *Store) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	existing, err := s.ListUsers(ctx, UserFilter{Email: email})
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		s.logger.Debug("admin seed skipped, email already registered", "email", email)
		return false, nil
	}
	if _, err := s.CreateUser(ctx, models.User{Name: name, Email: email, Password: password, Role: models.RoleAdmin}); err != nil {
		return false, err
	}
	return true, nil
}
