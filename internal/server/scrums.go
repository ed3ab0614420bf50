package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type scrumRequest struct {
	Name string `json:"name"`
}

// handleListScrums returns all scrums.
func (s *Server) handleListScrums(c *gin.Context) {
	scrums, err := s.store.ListScrums(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scrums)
}

// handleGetScrum returns a single scrum.
func (s *Server) handleGetScrum(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	scrum, err := s.store.GetScrum(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scrum)
}

// handleCreateScrum creates a new scrum.
func (s *Server) handleCreateScrum(c *gin.Context) {
	var req scrumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	scrum, err := s.store.CreateScrum(c.Request.Context(), req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, scrum)
}

// handleDeleteScrum removes a scrum that has no tasks.
func (s *Server) handleDeleteScrum(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteScrum(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
