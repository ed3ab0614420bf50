package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scrumboard/internal/apperr"
	"scrumboard/internal/board"
	"scrumboard/internal/forms"
)

const invalidCredentials = "Invalid email or password"

func (s *Server) handleLoginPage(c *gin.Context) {
	if sess := currentSession(c); sess != nil {
		seeOther(c, board.LandingFor(sess.Role))
		return
	}
	v := &view{Title: "Login", Form: forms.LoginForm{}}
	if c.Query("registered") == "1" {
		v.Notice = "Account created. Please log in."
	}
	s.render(c, http.StatusOK, "login.html", v)
}

func (s *Server) handleLogin(c *gin.Context) {
	var f forms.LoginForm
	if err := forms.Bind(c, &f); err != nil {
		s.render(c, statusFor(err), "login.html", &view{Title: "Login", Form: forms.LoginForm{Email: f.Email}, Errors: fieldErrors(err)})
		return
	}

	u, err := s.board.Login(c.Request.Context(), f)
	if err != nil {
		status := statusFor(err)
		flash := apperr.UserMessage(err)
		if errors.Is(err, apperr.ErrNotFound) {
			status, flash = http.StatusUnauthorized, invalidCredentials
		}
		s.logError(c, status, err)
		s.render(c, status, "login.html", &view{Title: "Login", Form: forms.LoginForm{Email: f.Email}, Flash: flash})
		return
	}

	sess, token, err := s.sessions.Login(u)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.setCookie(c, token)
	s.logger.Info("user logged in", "user_id", sess.User.String(), "role", string(sess.Role))
	seeOther(c, board.LandingFor(sess.Role))
}

func (s *Server) handleSignupPage(c *gin.Context) {
	s.render(c, http.StatusOK, "signup.html", &view{Title: "Sign up", Form: forms.SignupForm{}})
}

func (s *Server) handleSignup(c *gin.Context) {
	var f forms.SignupForm
	if err := forms.Bind(c, &f); err != nil {
		s.render(c, statusFor(err), "signup.html", &view{Title: "Sign up", Form: withoutPassword(f), Errors: fieldErrors(err)})
		return
	}
	if _, err := s.board.Signup(c.Request.Context(), f); err != nil {
		status := statusFor(err)
		s.logError(c, status, err)
		fields, flash := pageErrors(err, f)
		s.render(c, status, "signup.html", &view{
			Title:  "Sign up",
			Form:   withoutPassword(f),
			Flash:  flash,
			Errors: fields,
		})
		return
	}
	seeOther(c, "/login?registered=1")
}

func (s *Server) handleLogout(c *gin.Context) {
	s.sessions.Logout(currentSession(c))
	s.clearCookie(c)
	seeOther(c, "/login")
}

func withoutPassword(f forms.SignupForm) forms.SignupForm {
	f.Password = ""
	return f
}
