package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"scrumboard/internal/models"
	"scrumboard/internal/storage/sqlite"
)

// handleListUsers returns users, optionally filtered by email, password,
// role and role_ne.
func (s *Server) handleListUsers(c *gin.Context) {
	var filter sqlite.UserFilter
	filter.Email, filter.MatchEmail = c.GetQuery("email")
	filter.Password, filter.MatchPassword = c.GetQuery("password")
	for key, dst := range map[string]*models.Role{"role": &filter.Role, "role_ne": &filter.ExcludeRole} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		role, err := models.ParseRole(raw)
		if err != nil {
			s.respondBadRequest(c, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = role
	}

	users, err := s.store.ListUsers(c.Request.Context(), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// handleGetUser returns one user.
func (s *Server) handleGetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := s.store.GetUser(c.Request.Context(), models.UserID(id))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// handleCreateUser stores a new user document.
func (s *Server) handleCreateUser(c *gin.Context) {
	var req models.User
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}
	req.ID = 0

	user, err := s.store.CreateUser(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
