// Package server runs the agenda HTTP API and its background jobs.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/agenda/internal/profile"
	"github.com/hrygo/agenda/plugin/ai/session"
	"github.com/hrygo/agenda/plugin/ai/timeout"
	apiv1 "github.com/hrygo/agenda/server/router/api/v1"
	"github.com/hrygo/agenda/store"
)

// Idle rate limiters are dropped after this long.
const rateLimiterIdle = 10 * time.Minute

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	components *Components
	apiV1      *apiv1.APIV1Service
	cleanup    *session.SessionCleanupJob
	echoServer *echo.Echo
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	components, err := NewComponents(ctx, profile, store, nil)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Profile:    profile,
		Store:      store,
		components: components,
		cleanup: session.NewSessionCleanupJob(components.Sessions, session.CleanupConfig{
			RetentionDays: profile.SessionRetentionDays,
		}),
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Debug("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"duration_ms", v.Latency.Milliseconds(),
			)
			return nil
		},
	}))
	s.echoServer = echoServer

	s.apiV1 = apiv1.NewAPIV1Service(profile, components.Arbiter, components.Sessions, components.Calendar, components.Policy)
	s.apiV1.RegisterRoutes(echoServer)

	return s, nil
}

// Start serves HTTP and runs the cache sweeper and session cleanup until ctx
// is cancelled or one of them fails. The server is shut down before Start returns.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("agenda server listening", "address", address, "mode", s.Profile.Mode, "version", s.Profile.Version)
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.components.Cache.Run(gctx)
	})
	g.Go(func() error {
		return s.cleanup.Run(gctx)
	})
	g.Go(func() error {
		return s.pruneRateLimiter(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) pruneRateLimiter(ctx context.Context) error {
	ticker := time.NewTicker(rateLimiterIdle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.apiV1.RateLimiter.Prune(rateLimiterIdle); n > 0 {
				slog.Debug("pruned idle rate limiters", "removed", n)
			}
		}
	}
}

// Shutdown stops accepting requests, waits for in-flight turns and closes
// the caches and the store.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("server shutting down")

	var errs []error
	if err := s.echoServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown server: %w", err))
	}
	if err := s.components.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close cache: %w", err))
	}
	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}

	slog.Info("agenda stopped properly")
	return errors.Join(errs...)
}
