package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	coreconfig "github.com/dipanalytics/contentbot/core/config"
	"github.com/dipanalytics/contentbot/core/logger"
	"github.com/dipanalytics/contentbot/core/objstore"
	"github.com/dipanalytics/contentbot/core/store"
	"log/slog"
)

// Server is the administrative HTTP API over the content store.
type Server struct {
	cfg     coreconfig.AdminConfig
	store   *store.Store
	storage objstore.Storage
	echo    *echo.Echo
}

// NewServer wires routes and middleware for the admin API.
func NewServer(cfg coreconfig.AdminConfig, st *store.Store, storage objstore.Storage) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		storage: storage,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())

	e.GET("/healthz", s.Health)
	e.POST("/v1/auth/login", s.Login)

	v1 := e.Group("/v1")
	v1.Use(JWTAuth(cfg.JWTSecret))

	v1.GET("/users", s.ListUsers)
	v1.GET("/users/:id", s.GetUser)
	v1.PATCH("/users/:id", s.UpdateUser)

	v1.GET("/contents", s.ListContent)
	v1.GET("/contents/:id", s.GetContent)
	v1.PATCH("/contents/:id", s.UpdateContent)
	v1.DELETE("/contents/:id", s.DeleteContent)

	v1.GET("/grants", s.ListGrants)
	v1.DELETE("/grants/:id", s.DeleteGrant)

	s.echo = e
	return s
}

// Health reports liveness.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.ADM.Info("admin listening",
			slog.String("event", "admin.listen"),
			slog.String("addr", s.cfg.Listen),
		)
		if err := s.echo.Start(s.cfg.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
