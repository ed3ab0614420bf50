package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scrumboard/internal/apperr"
	"scrumboard/internal/session"
)

const sessionKey = "session"

// loadSession restores the session from the cookie on every request. An
// invalid cookie is dropped.
func (s *Server) loadSession(c *gin.Context) {
	token, err := c.Cookie(session.CookieName)
	if err != nil || token == "" {
		c.Next()
		return
	}
	sess, err := s.sessions.Restore(token)
	if err != nil {
		s.logger.Debug("dropping session cookie", "error", err)
		s.clearCookie(c)
		c.Next()
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

// currentSession returns the restored session or nil.
func currentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}

// requireLogin redirects to the login page without a session.
func (s *Server) requireLogin(c *gin.Context) {
	if currentSession(c) == nil {
		seeOther(c, "/login")
		c.Abort()
		return
	}
	c.Next()
}

// requireAdmin rejects employee sessions.
func (s *Server) requireAdmin(c *gin.Context) {
	if !currentSession(c).IsAdmin() {
		s.respondError(c, apperr.ErrForbidden)
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) setCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
