// Package app wires configuration, storage, the CMS client and the session
// into the objects the commands use.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Gilberthb/Umunsi-sub002/internal/apiclient"
	"github.com/Gilberthb/Umunsi-sub002/internal/config"
	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	"github.com/Gilberthb/Umunsi-sub002/internal/session"
	"github.com/Gilberthb/Umunsi-sub002/internal/tokenstore"
	"github.com/Gilberthb/Umunsi-sub002/pkg/database"
	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
	"github.com/Gilberthb/Umunsi-sub002/pkg/health"
	"github.com/Gilberthb/Umunsi-sub002/pkg/tracing"
)

// UserAgent identifies newsctl to the CMS API.
const UserAgent = "newsctl/0.1.0"

// App holds the long-lived objects of one newsctl invocation.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	store          tokenstore.Store
	closeStore     func() error
	client         *apiclient.Client
	session        *session.Session
	tracerShutdown func(context.Context) error
}

// New opens the token store and builds the client and session. The session
// is not bootstrapped yet; call Start.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing("newsctl"))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	tokens := cfg.Tokens()
	if tokens.Kind == tokenstore.KindSQLite {
		database.SetSlowQueryLogging(cfg.TokenSQLiteSlowQuery, logger)
	}
	if err := ensureDir(tokens); err != nil {
		return nil, err
	}
	store, closeStore, err := tokenstore.Open(ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}
	logger.Debug("token store opened", slog.String("kind", string(tokens.Kind)))

	client, err := apiclient.New(cfg.API(UserAgent), apiclient.TokenFunc(store.Load), logger)
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("create api client: %w", err)
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		store:          store,
		closeStore:     closeStore,
		client:         client,
		session:        session.New(client, store, cfg.Session(), logger),
		tracerShutdown: tracerShutdown,
	}, nil
}

// ensureDir creates the parent directory of a local token file or database.
func ensureDir(cfg tokenstore.Config) error {
	var path string
	switch cfg.Kind {
	case tokenstore.KindFile:
		path = cfg.FilePath
	case tokenstore.KindSQLite:
		if cfg.SQLiteDSN == ":memory:" || filepath.Ext(cfg.SQLiteDSN) == "" {
			return nil
		}
		path = cfg.SQLiteDSN
	default:
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	return nil
}

// Start bootstraps the session from the stored token. A failed round-trip
// to the API is not fatal: the session stays signed out and the error is
// logged. Storage failures are returned.
func (a *App) Start(ctx context.Context) error {
	err := a.session.Bootstrap(ctx)
	var httpErr *apperrors.HTTPError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrNetwork), errors.Is(err, apperrors.ErrShape), errors.As(err, &httpErr):
		a.logger.Warn("could not restore session", slog.String("error", err.Error()))
		return nil
	default:
		return err
	}
}

// Session returns the authentication session.
func (a *App) Session() *session.Session { return a.session }

// Client returns the CMS API client.
func (a *App) Client() *apiclient.Client { return a.client }

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Health builds the checks reported by "newsctl doctor".
func (a *App) Health() *health.Handler {
	h := health.NewHandler(a.cfg.APITimeout)
	h.Register("token-store", func(ctx context.Context) error {
		_, err := a.store.Load(ctx)
		return err
	})
	h.Register("cms-api", func(ctx context.Context) error {
		_, err := a.client.ListCategories(ctx, domain.ListQuery{Limit: 1})
		return err
	})
	h.RegisterNonCritical("session", func(ctx context.Context) error {
		if err := a.session.RefreshUser(ctx); err != nil {
			return err
		}
		if exp, ok := a.session.TokenExpiry(ctx); ok && time.Until(exp) < 0 {
			return fmt.Errorf("token expired at %s", exp.Format(time.RFC3339))
		}
		return nil
	})
	return h
}

// Close flushes spans and releases the token store.
func (a *App) Close() error {
	var errs []error

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if err := a.closeStore(); err != nil {
		a.logger.Error("token store close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
