package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/dori/leadboard/internal/board"
)

// Server is the HTTP API over a board service. The service's lock is the
// only write gate, so handlers and the TUI see the same ordering.
type Server struct {
	e   *echo.Echo
	svc *board.Service
	log logrus.FieldLogger
}

// New registers the routes. With a nil auth only the public routes exist.
func New(svc *board.Service, auth *Auth, log logrus.FieldLogger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	s := &Server{e: e, svc: svc, log: log}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	}))
	// The contact form is posted from the public website
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s.register(auth)
	return s
}

func (s *Server) register(auth *Auth) {
	s.e.GET("/healthz", s.healthz)
	s.e.POST("/api/leads", s.postLead)

	if auth == nil {
		s.log.Warn("no jwt secret configured; admin API disabled")
		return
	}

	api := s.e.Group("/api", auth.Middleware)
	api.GET("/boards", s.listBoards)
	api.POST("/boards", s.createBoard)
	api.PATCH("/boards/:id", s.updateBoard)
	api.DELETE("/boards/:id", s.deleteBoard)
	api.GET("/boards/:id/columns", s.boardColumns)
	api.POST("/boards/:id/columns", s.createColumn)
	api.PATCH("/columns/:id", s.updateColumn)
	api.DELETE("/columns/:id", s.deleteColumn)
	api.POST("/columns/:id/tasks", s.createTask)
	api.GET("/tasks/:id", s.getTask)
	api.PATCH("/tasks/:id", s.updateTask)
	api.DELETE("/tasks/:id", s.deleteTask)
	api.POST("/tasks/:id/comments", s.addComment)
	api.POST("/tasks/:id/checklist", s.addChecklistItem)
	api.POST("/moves", s.move)
}

// Handler exposes the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start serves on addr until Shutdown
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("http api listening")
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
