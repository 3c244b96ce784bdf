package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Gilberthb/Umunsi-sub002/internal/config"
	"github.com/Gilberthb/Umunsi-sub002/internal/mockapi"
	"github.com/Gilberthb/Umunsi-sub002/pkg/middleware"
	"github.com/Gilberthb/Umunsi-sub002/pkg/tracing"
)

// Server runs the development CMS API.
type Server struct {
	logger         *slog.Logger
	api            *mockapi.Server
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewServer builds the development API from cfg.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing("mockapi"))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	opts := mockapi.Options{
		Secret:   cfg.MockAPIJWTSecret,
		TokenTTL: cfg.MockAPITokenTTL,
		Logger:   logger,
		Seed:     cfg.MockAPISeed,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.MockAPICORSOrigins,
			Environment:    cfg.Environment,
		},
	}
	if cfg.MockAPIPprof {
		opts.PprofCIDRs = cfg.MockAPIPprofCIDRs
	}
	api, err := mockapi.New(opts)
	if err != nil {
		return nil, fmt.Errorf("create mock api: %w", err)
	}
	if cfg.MockAPISeed {
		logger.Info("seeded development data",
			slog.String("admin", mockapi.SeedAdminEmail),
			slog.String("editor", mockapi.SeedEditorEmail),
		)
	}

	return &Server{
		logger: logger,
		api:    api,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.MockAPIHTTPPort),
			Handler:           api,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
		},
		tracerShutdown: tracerShutdown,
	}, nil
}

// API returns the in-memory backend.
func (s *Server) API() *mockapi.Server { return s.api }

// Run listens on the configured port and blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting HTTP server", slog.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}
	return s.Shutdown()
}

// Shutdown drains in-flight requests, then flushes pending spans.
func (s *Server) Shutdown() error {
	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := s.httpServer.Shutdown(httpCtx); err != nil {
		s.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if s.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := s.tracerShutdown(tracerCtx); err != nil {
			s.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	s.logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
