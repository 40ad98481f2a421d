package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/sixdegrees/internal/profile"
	"github.com/hrygo/sixdegrees/plugin/cache"
	"github.com/hrygo/sixdegrees/plugin/embedding"
	"github.com/hrygo/sixdegrees/plugin/graph"
	"github.com/hrygo/sixdegrees/plugin/ingest"
	"github.com/hrygo/sixdegrees/server/middleware"
	apiv1 "github.com/hrygo/sixdegrees/server/router/api/v1"
	embeddingrunner "github.com/hrygo/sixdegrees/server/runner/embedding"
	"github.com/hrygo/sixdegrees/server/runner/warmup"
	"github.com/hrygo/sixdegrees/server/service/artgraph"
	"github.com/hrygo/sixdegrees/store"
)

// Server hosts the HTTP API and the background runners.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store
	Builder *graph.Builder

	echoServer  *echo.Echo
	cache       cache.Backend
	rateLimiter *middleware.RateLimiter

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewServer wires the cache, graph builder, query service and routes.
func NewServer(_ context.Context, p *profile.Profile, st *store.Store) (*Server, error) {
	backend, err := cache.Open(p.CacheBackend, p.Data, p.CacheTTL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open graph cache")
	}
	builder, err := NewGraphBuilder(p, st, backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	s := &Server{
		Profile: p,
		Store:   st,
		Builder: builder,
		cache:   backend,
	}

	echoServer := echo.New()
	echoServer.Debug = p.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(middleware.RequestLogger(slog.Default()))
	echoServer.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	if p.RateLimit > 0 {
		s.rateLimiter = middleware.NewRateLimiter(p.RateLimit, 0)
		echoServer.Use(s.rateLimiter.Middleware())
	}
	s.echoServer = echoServer

	service := artgraph.NewService(builder, nil)
	// Server-side imports invalidate this process's builder, so the cache
	// it serves never outlives the artworks it was built from.
	api := apiv1.NewAPIV1Service(p, service, st, ingest.NewImporter(st, builder, nil))
	if reporter, ok := backend.(cache.StatsReporter); ok {
		api.CacheStats = reporter
	}
	api.RegisterRoutes(echoServer)
	return s, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully. Background runners share ctx. Start always
// leaves the server shut down when it returns.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		_ = s.Shutdown(ctx)
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	slog.Info("sixdegrees server started", "address", listener.Addr().String(), "mode", s.Profile.Mode, "driver", s.Profile.Driver)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.echoServer.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server stopped")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	s.startRunners(ctx, g)
	return g.Wait()
}

func (s *Server) startRunners(ctx context.Context, g *errgroup.Group) {
	g.Go(func() error {
		warmup.NewRunner(s.Builder, s.Profile.WarmInterval).Run(ctx)
		return nil
	})

	if s.rateLimiter != nil {
		g.Go(func() error {
			s.rateLimiter.RunPruner(ctx, time.Minute)
			return nil
		})
	}

	// Only postgres persists embeddings; elsewhere they are derived at build time.
	if s.Profile.Driver == "postgres" {
		embedder, err := embedding.NewFromProfile(s.Profile)
		if err != nil {
			slog.Warn("embedding backfill disabled", "error", err)
			return
		}
		g.Go(func() error {
			embeddingrunner.NewRunner(s.Store, embedder).Run(ctx)
			return nil
		})
	}
}

// Shutdown stops the HTTP server and releases the cache and store. Only the
// first call does any work; later calls return its result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.shutdownErr = s.shutdown(ctx)
	})
	return s.shutdownErr
}

func (s *Server) shutdown(ctx context.Context) error {
	slog.Info("server shutting down")
	var firstErr error
	record := func(err error, msg string) {
		if err == nil {
			return
		}
		slog.Error(msg, "error", err)
		if firstErr == nil {
			firstErr = errors.Wrap(err, msg)
		}
	}
	record(s.echoServer.Shutdown(ctx), "failed to shutdown http server")
	record(s.cache.Close(), "failed to close cache")
	record(s.Store.Close(), "failed to close store")
	if firstErr != nil {
		return firstErr
	}
	slog.Info("server stopped properly")
	return nil
}

