// Package web serves the scrum board as server-rendered HTML pages.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"scrumboard/internal/apperr"
	"scrumboard/internal/board"
	"scrumboard/internal/forms"
	"scrumboard/internal/models"
	"scrumboard/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options tune the web server.
type Options struct {
	// StaticDir is an optional directory served under /static.
	StaticDir string
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
}

// Server renders the board pages.
type Server struct {
	engine   *gin.Engine
	board    *board.Service
	sessions *session.Manager
	logger   *slog.Logger
	tmpl     *template.Template
	opts     Options
}

// New constructs the web server with routes and middleware configured.
func New(svc *board.Service, sessions *session.Manager, logger *slog.Logger, opts Options) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/healthz"))

	srv := &Server{
		engine:   router,
		board:    svc,
		sessions: sessions,
		logger:   logger,
		tmpl:     tmpl,
		opts:     opts,
	}
	router.Use(srv.loadSession)

	srv.registerRoutes()
	srv.mountStatic()
	return srv, nil
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.GET("/login", s.handleLoginPage)
	s.engine.POST("/login", s.handleLogin)
	s.engine.GET("/signup", s.handleSignupPage)
	s.engine.POST("/signup", s.handleSignup)
	s.engine.POST("/logout", s.handleLogout)

	s.engine.GET("/", s.handleDashboard)

	authed := s.engine.Group("", s.requireLogin)
	{
		authed.GET("/scrums/:id", s.handleScrumDetail)
		authed.GET("/profiles", s.handleProfile)
	}

	admin := s.engine.Group("", s.requireLogin, s.requireAdmin)
	{
		admin.POST("/scrums", s.handleCreateScrum)
		admin.POST("/scrums/:id/tasks/:taskID/status", s.handleChangeStatus)
		admin.POST("/profiles/users", s.handleCreateUser)
	}

	s.engine.NoRoute(func(c *gin.Context) {
		s.render(c, http.StatusNotFound, "error.html", &view{Title: "Not found", Flash: "Page not found."})
	})
}

// view is the data every template receives.
type view struct {
	Title   string
	Session *session.Session
	Flash   string
	Notice  string
	Errors  map[string]string

	// Form is the submitted or initial values of the page's form.
	Form any

	Dashboard  *board.DashboardPage
	ShowCreate bool
	Detail     *board.DetailPage

	Profile *board.ProfilePage
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"statusClass": func(st models.Status) string {
			return strings.ReplaceAll(strings.ToLower(string(st)), " ", "-")
		},
		"eq": func(a, b any) bool {
			return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
		},
		"revision": func(t models.Task) int {
			return len(t.History)
		},
		"isAdminMode": func(m board.ProfileMode) bool {
			return m == board.AdminMode
		},
		"statuses": func() []models.Status {
			return models.Statuses
		},
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// render executes a page into a buffer so a template failure never leaves a
// half-written response.
func (s *Server) render(c *gin.Context, status int, name string, v *view) {
	if v.Session == nil {
		v.Session = currentSession(c)
	}
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, v); err != nil {
		s.logger.Error("render failed", slog.String("template", name), slog.String("error", err.Error()))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// statusFor maps board errors onto HTTP status codes.
func statusFor(err error) int {
	var ve *apperr.ValidationError
	var ne *apperr.NetworkError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &ne):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fieldErrors returns the per-field messages carried by err, if any.
func fieldErrors(err error) map[string]string {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// pageErrors splits err into messages shown next to the fields of f and a
// flash for the rest. Fields the form does not render, such as the
// store's own field names, go to the flash so nothing is dropped.
func pageErrors(err error, f forms.Former) (map[string]string, string) {
	fields := fieldErrors(err)
	if fields == nil {
		return nil, apperr.UserMessage(err)
	}
	known := forms.Fields(f)
	var other []string
	for name, msg := range fields {
		if _, ok := known[name]; !ok {
			other = append(other, msg)
		}
	}
	if len(other) == 0 {
		return fields, ""
	}
	sort.Strings(other)
	return fields, "The form was rejected: " + strings.Join(other, "; ")
}

// respondError logs err and renders the error page.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	s.logError(c, status, err)
	s.render(c, status, "error.html", &view{Title: "Error", Flash: apperr.UserMessage(err)})
}

func (s *Server) logError(c *gin.Context, status int, err error) {
	attrs := []any{slog.String("path", c.Request.URL.Path), slog.Int("status", status), slog.String("error", err.Error())}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", attrs...)
		return
	}
	s.logger.Debug("request rejected", attrs...)
}

// parseID converts a path parameter to int64, answering 404 when it is not
// a valid identifier.
func (s *Server) parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		s.render(c, http.StatusNotFound, "error.html", &view{Title: "Not found", Flash: "Page not found."})
		return 0, false
	}
	return id, true
}

func seeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}
