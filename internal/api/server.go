// Package api serves a read-mostly JSON view of the library over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/gamify"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Library is the persistence the API reads and edits.
type Library interface {
	LoadSets(ctx context.Context) ([]deck.Set, deck.LoadReport, error)
	LoadCurrentSession(ctx context.Context) (int, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// Progress produces the stats overview.
type Progress interface {
	Overview(ctx context.Context, sets []deck.Set) (gamify.Overview, error)
}

// Server wires the routes onto an echo instance.
type Server struct {
	echo     *echo.Echo
	library  Library
	progress Progress
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Server. progress may be nil, in which case /api/stats
// answers 503.
func New(library Library, progress Progress, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, library: library, progress: progress, logger: logger, now: time.Now}
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				s.logger.Warn("api request failed", append(attrs, slog.String("error", v.Error.Error()))...)
				return nil
			}
			s.logger.Debug("api request", attrs...)
			return nil
		},
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	g := s.echo.Group("/api")
	g.GET("/health", s.health)
	g.GET("/sets", s.listSets)
	g.GET("/sets/:id", s.getSet)
	g.PUT("/sets/:id/active", s.setActive)
	g.GET("/due", s.due)
	g.GET("/stats", s.stats)
	g.GET("/export", s.export)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", slog.String("addr", addr))
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("api stopped")
	return nil
}

// handleError renders every error as {"error": "..."}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	} else {
		s.logger.Error("api handler error", slog.String("error", err.Error()))
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Error: msg})
	}
	if err != nil {
		s.logger.Warn("write error response", slog.String("error", err.Error()))
	}
}
