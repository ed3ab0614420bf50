// Package session holds the identity of the logged-in user. A Session is
// created on login, restored from its signed token on later requests and
// destroyed on logout; it is passed explicitly to everything that needs it.
package session

import (
	"errors"
	"fmt"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"scrumboard/internal/models"
)

// CookieName is the fixed key the token is stored under in the browser.
const CookieName = "scrumboard_session"

// Session is the authenticated identity. It never carries the password.
type Session struct {
	ID    string
	User  models.UserID
	Name  string
	Email string
	Role  models.Role
}

// IsAdmin reports whether the session may use admin-only controls.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// Manager issues and verifies session tokens.
type Manager struct {
	secret []byte
}

// NewManager returns a Manager signing with secret.
func NewManager(secret string) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	return &Manager{secret: []byte(secret)}, nil
}

type claims struct {
	UserID int64  `json:"uid"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Login creates a session for u and returns it with its signed token.
// Tokens carry no expiry; a stored identity stays valid until logout.
func (m *Manager) Login(u models.User) (*Session, string, error) {
	if u.ID <= 0 {
		return nil, "", errors.New("user has no id")
	}
	if !u.Role.Valid() {
		return nil, "", fmt.Errorf("user %d has unknown role %q", u.ID, u.Role)
	}
	s := &Session{
		ID:    uuid.NewString(),
		User:  u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: int64(u.ID),
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:      s.ID,
			Subject: u.ID.String(),
		},
	})
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return nil, "", fmt.Errorf("sign session: %w", err)
	}
	return s, signed, nil
}

// Restore validates a token and rebuilds the session it describes.
func (m *Manager) Restore(token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("missing session token")
	}
	var c claims
	tok, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, fmt.Errorf("restore session: %w", err)
	}
	role, err := models.ParseRole(c.Role)
	if err != nil || c.UserID <= 0 || c.ID == "" {
		return nil, errors.New("restore session: invalid claims")
	}
	return &Session{
		ID:    c.ID,
		User:  models.UserID(c.UserID),
		Name:  c.Name,
		Email: c.Email,
		Role:  role,
	}, nil
}

// Logout ends the session. The caller drops the stored token.
func (m *Manager) Logout(s *Session) *Session {
	if s != nil {
		*s = Session{}
	}
	return nil
}
