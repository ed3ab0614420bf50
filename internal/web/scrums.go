package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"scrumboard/internal/apperr"
	"scrumboard/internal/forms"
	"scrumboard/internal/models"
)

// handleDashboard lists all scrums. Visitors without a session see the
// list without the create control.
func (s *Server) handleDashboard(c *gin.Context) {
	page, err := s.board.Dashboard(c.Request.Context(), currentSession(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.render(c, http.StatusOK, "dashboard.html", &view{
		Title:      "Scrum Teams",
		Dashboard:  &page,
		ShowCreate: page.CanCreate && c.Query("new") == "1",
		Form:       forms.NewScrumForm(),
	})
}

func (s *Server) handleCreateScrum(c *gin.Context) {
	ctx := c.Request.Context()
	sess := currentSession(c)

	f := forms.NewScrumForm()
	err := forms.Bind(c, f)
	if err == nil {
		var scrum models.Scrum
		scrum, _, err = s.board.CreateScrum(ctx, sess, f)
		if err == nil {
			s.logger.Info("scrum created", "scrum_id", scrum.ID, "by", sess.User.String())
			seeOther(c, "/scrums/"+strconv.FormatInt(scrum.ID, 10))
			return
		}
	}

	page, perr := s.board.Dashboard(ctx, sess)
	if perr != nil {
		s.respondError(c, perr)
		return
	}
	status := statusFor(err)
	s.logError(c, status, err)
	fields, flash := pageErrors(err, f)
	s.render(c, status, "dashboard.html", &view{
		Title:      "Scrum Teams",
		Dashboard:  &page,
		ShowCreate: true,
		Form:       f,
		Errors:     fields,
		Flash:      flash,
	})
}

// handleScrumDetail renders the dashboard with the selected scrum below it.
func (s *Server) handleScrumDetail(c *gin.Context) {
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}
	s.renderDetail(c, id, http.StatusOK, "")
}

func (s *Server) renderDetail(c *gin.Context, scrumID int64, status int, flash string) {
	ctx := c.Request.Context()
	sess := currentSession(c)

	page, err := s.board.Dashboard(ctx, sess)
	if err != nil {
		s.respondError(c, err)
		return
	}
	detail, err := s.board.ScrumDetail(ctx, sess, scrumID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.render(c, status, "dashboard.html", &view{
		Title:     detail.Scrum.Name,
		Dashboard: &page,
		Detail:    &detail,
		Form:      forms.NewScrumForm(),
		Flash:     flash,
	})
}

func (s *Server) handleChangeStatus(c *gin.Context) {
	scrumID, ok := s.parseID(c, "id")
	if !ok {
		return
	}
	taskID, ok := s.parseID(c, "taskID")
	if !ok {
		return
	}

	var f forms.StatusForm
	err := forms.Bind(c, &f)
	if err == nil {
		var moved models.Task
		moved, err = s.board.ChangeStatus(c.Request.Context(), currentSession(c), scrumID, taskID, f)
		if err == nil {
			s.logger.Info("task status changed", "task_id", moved.ID, "status", string(moved.Status))
			seeOther(c, "/scrums/"+strconv.FormatInt(scrumID, 10))
			return
		}
	}

	status := statusFor(err)
	if status == http.StatusNotFound {
		s.respondError(c, err)
		return
	}
	s.logError(c, status, err)
	s.renderDetail(c, scrumID, status, apperr.UserMessage(err))
}
