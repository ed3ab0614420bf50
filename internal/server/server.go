package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"scrumboard/internal/apperr"
	"scrumboard/internal/models"
	"scrumboard/internal/storage/sqlite"
)

// Server provides the HTTP handlers of the scrum document store.
type Server struct {
	engine *gin.Engine
	store  *sqlite.Store
	logger *slog.Logger
	now    func() time.Time
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/healthz"))

	srv := &Server{
		engine: router,
		store:  store,
		logger: logger,
		now:    time.Now,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires the three collections.
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)

	users := s.engine.Group("/users")
	{
		users.GET("", s.handleListUsers)
		users.POST("", s.handleCreateUser)
		users.GET("/:id", s.handleGetUser)
	}

	scrums := s.engine.Group("/scrums")
	{
		scrums.GET("", s.handleListScrums)
		scrums.POST("", s.handleCreateScrum)
		scrums.GET("/:id", s.handleGetScrum)
		scrums.DELETE("/:id", s.handleDeleteScrum)
	}

	tasks := s.engine.Group("/tasks")
	{
		tasks.GET("", s.handleListTasks)
		tasks.POST("", s.handleCreateTask)
		tasks.GET("/:id", s.handleGetTask)
		tasks.PATCH("/:id", s.handlePatchTask)
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})
}

// handleHealth reports readiness once the database answers.
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) today() models.Date {
	return models.DateOf(s.now())
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// statusFor maps store errors onto HTTP status codes.
func statusFor(err error) int {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusPreconditionFailed
	case errors.Is(err, sqlite.ErrScrumHasTasks):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	} else {
		s.logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	body := gin.H{"error": err.Error()}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		body["fields"] = ve.Fields
	}
	c.JSON(status, body)
}

// respondBadRequest rejects a malformed body.
func (s *Server) respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
