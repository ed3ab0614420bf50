package models

import (
	"fmt"
	"strings"
)

// Role is the access level of a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// ParseRole accepts only the two known roles.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleAdmin, RoleEmployee:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User is an account of the scrum board.
type User struct {
	ID       UserID `json:"id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Label renders the user the way assignee pickers show it.
func (u User) Label() string {
	return fmt.Sprintf("%s (%s)", u.Name, u.Email)
}

// Scrum is a named team that owns a set of tasks.
type Scrum struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
