package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"scrumboard/internal/models"
	"scrumboard/internal/storage/sqlite"
)

type taskPatchRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Status      *models.Status         `json:"status"`
	ScrumID     *int64                 `json:"scrumId"`
	AssignedTo  *models.UserID         `json:"assignedTo"`
	History     *[]models.HistoryEntry `json:"history"`
}

// handleListTasks returns tasks, optionally filtered by scrumId and assignedTo.
func (s *Server) handleListTasks(c *gin.Context) {
	var filter sqlite.TaskFilter
	if raw := c.Query("scrumId"); raw != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			s.respondBadRequest(c, fmt.Errorf("invalid scrumId %q", raw))
			return
		}
		filter.ScrumID = &id
	}
	if raw := c.Query("assignedTo"); raw != "" {
		id, err := models.ParseUserID(raw)
		if err != nil {
			s.respondBadRequest(c, err)
			return
		}
		filter.AssignedTo = &id
	}

	tasks, err := s.store.ListTasks(c.Request.Context(), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// handleGetTask returns one task with its history length as ETag.
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := s.store.GetTask(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	setRevision(c, task)
	c.JSON(http.StatusOK, task)
}

// handleCreateTask inserts a new task document.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req models.Task
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}
	req.ID = 0

	task, err := s.store.CreateTask(c.Request.Context(), req, s.today())
	if err != nil {
		s.respondError(c, err)
		return
	}
	setRevision(c, task)
	c.JSON(http.StatusCreated, task)
}

// handlePatchTask replaces the supplied fields. An If-Match header carrying
// the history length the caller last saw turns a concurrent change into 412.
func (s *Server) handlePatchTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	expected, err := parseRevision(c.GetHeader("If-Match"))
	if err != nil {
		s.respondBadRequest(c, err)
		return
	}

	var req taskPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	patch := sqlite.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		ScrumID:     req.ScrumID,
		AssignedTo:  req.AssignedTo,
	}
	if req.History != nil {
		patch.History = *req.History
		if patch.History == nil {
			patch.History = []models.HistoryEntry{}
		}
	}

	task, err := s.store.PatchTask(c.Request.Context(), id, patch, expected)
	if err != nil {
		s.respondError(c, err)
		return
	}
	setRevision(c, task)
	c.JSON(http.StatusOK, task)
}

func setRevision(c *gin.Context, t models.Task) {
	c.Header("ETag", strconv.Quote(strconv.Itoa(len(t.History))))
}

func parseRevision(header string) (int, error) {
	header = strings.TrimSpace(header)
	if header == "" || header == "*" {
		return sqlite.AnyHistoryLen, nil
	}
	n, err := strconv.Atoi(strings.Trim(header, `"`))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid If-Match %q", header)
	}
	return n, nil
}
