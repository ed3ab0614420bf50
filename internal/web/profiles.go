package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scrumboard/internal/forms"
	"scrumboard/internal/models"
)

func (s *Server) handleProfile(c *gin.Context) {
	var historyFor *models.UserID
	if raw := c.Query("history"); raw != "" {
		id, err := models.ParseUserID(raw)
		if err != nil {
			s.render(c, http.StatusBadRequest, "error.html", &view{Title: "Error", Flash: "Unknown user."})
			return
		}
		historyFor = &id
	}
	s.renderProfile(c, historyFor, http.StatusOK, &view{Form: forms.UserForm{Role: string(models.RoleEmployee)}})
}

func (s *Server) renderProfile(c *gin.Context, historyFor *models.UserID, status int, v *view) {
	page, err := s.board.Profile(c.Request.Context(), currentSession(c), historyFor)
	if err != nil {
		s.respondError(c, err)
		return
	}
	v.Title = "User Profile"
	v.Profile = &page
	s.render(c, status, "profiles.html", v)
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var f forms.UserForm
	err := forms.Bind(c, &f)
	if err == nil {
		var u models.User
		u, err = s.board.CreateUser(c.Request.Context(), currentSession(c), f)
		if err == nil {
			s.logger.Info("user created", "user_id", u.ID.String(), "role", string(u.Role))
			seeOther(c, "/profiles")
			return
		}
	}

	status := statusFor(err)
	s.logError(c, status, err)
	fields, flash := pageErrors(err, f)
	f.Password = ""
	s.renderProfile(c, nil, status, &view{Form: f, Errors: fields, Flash: flash})
}
