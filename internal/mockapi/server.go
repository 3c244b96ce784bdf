// Package mockapi is an in-memory stand-in for the CMS REST API. It speaks the
// same envelopes, status codes and messages as the real backend and is used by
// the client and session tests and by the mockapi command for local work.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
	"github.com/Gilberthb/Umunsi-sub002/pkg/health"
	"github.com/Gilberthb/Umunsi-sub002/pkg/httputil"
	"github.com/Gilberthb/Umunsi-sub002/pkg/logger"
	"github.com/Gilberthb/Umunsi-sub002/pkg/middleware"
	"github.com/Gilberthb/Umunsi-sub002/pkg/validator"
)

// APIPrefix is the path under which the API routes are mounted.
const APIPrefix = "/api"

const serviceName = "mockapi"

// Options configure a Server. Zero values select test-friendly defaults.
type Options struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
	Logger     *slog.Logger
	// Seed loads a small newsroom: an administrator, an editor, categories
	// and a handful of articles.
	Seed bool
	// CORS governs browser access to the API. The zero value allows any origin.
	CORS middleware.CORSConfig
	// PprofCIDRs, when set, mounts /debug/pprof for callers in these ranges.
	PprofCIDRs []string
}

// Server is the mock CMS API.
type Server struct {
	state   *state
	tokens  *tokenIssuer
	faults  *faults
	health  *health.Handler
	logger  *slog.Logger
	cost    int
	now     func() time.Time
	cors    middleware.CORSConfig
	pprof   []string
	handler http.Handler
}

// New builds a server and, when asked, seeds it.
func New(opts Options) (*Server, error) {
	if opts.Secret == "" {
		opts.Secret = "mockapi-secret"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if len(opts.CORS.AllowedOrigins) == 0 {
		opts.CORS.AllowedOrigins = []string{"*"}
	}
	if len(opts.CORS.ExposedHeaders) == 0 {
		opts.CORS.ExposedHeaders = []string{middleware.RequestIDHeader}
	}

	s := &Server{
		state:  newState(),
		tokens: newTokenIssuer(opts.Secret, opts.TokenTTL),
		faults: newFaults(),
		health: health.NewHandler(2 * time.Second),
		logger: opts.Logger,
		cost:   opts.BcryptCost,
		now:    func() time.Time { return time.Now().UTC() },
		cors:   opts.CORS,
		pprof:  opts.PprofCIDRs,
	}
	s.health.Register("token-signer", s.checkSigner)
	s.handler = s.routes()

	if opts.Seed {
		if err := s.seed(); err != nil {
			return nil, fmt.Errorf("seed mock data: %w", err)
		}
	}
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(s.cors))
	r.Use(s.faults.middleware)
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.RequestLogging(s.logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.RequestLogger(s.logger))

	r.Get("/health/live", s.health.LivenessHandler())
	r.Get("/health/ready", s.health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	if len(s.pprof) > 0 {
		middleware.RegisterPprof(r, s.pprof, s.logger)
	}

	authed := middleware.Auth(s.validateToken)
	staff := middleware.RequireRole(string(domain.RoleAdmin), string(domain.RoleEditor), string(domain.RoleAuthor))
	editors := middleware.RequireRole(string(domain.RoleAdmin), string(domain.RoleEditor))
	admins := middleware.RequireRole(string(domain.RoleAdmin))

	r.Route(APIPrefix, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/register", s.register)
			r.Group(func(r chi.Router) {
				r.Use(authed)
				r.Post("/logout", s.logout)
				r.Get("/me", s.me)
				r.Put("/password", s.changePassword)
			})
		})

		r.Route("/articles", func(r chi.Router) {
			r.With(middleware.OptionalAuth(s.validateToken)).Get("/", s.listArticles)
			r.With(middleware.CacheControl(60)).Get("/slug/{slug}", s.getArticleBySlug)
			r.Post("/{id}/view", s.recordView)
			r.Group(func(r chi.Router) {
				r.Use(authed)
				r.Get("/{id}", s.getArticle)
				r.With(staff).Post("/", s.createArticle)
				r.With(staff).Put("/{id}", s.updateArticle)
				r.With(staff).Post("/{id}/featured-image", s.uploadFeaturedImage)
				r.With(editors).Patch("/{id}/status", s.setArticleStatus)
				r.With(editors).Patch("/{id}/featured", s.setArticleFeatured)
				r.With(editors).Delete("/{id}", s.deleteArticle)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.listCategories)
			r.Get("/{id}", s.getCategory)
			r.Group(func(r chi.Router) {
				r.Use(authed, editors)
				r.Post("/", s.createCategory)
				r.Put("/{id}", s.updateCategory)
				r.Delete("/{id}", s.deleteCategory)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authed)
			r.Put("/profile", s.updateProfile)
			r.Post("/avatar", s.uploadAvatar)
			r.Group(func(r chi.Router) {
				r.Use(admins)
				r.Get("/", s.listUsers)
				r.Post("/", s.createUser)
				r.Get("/{id}", s.getUser)
				r.Put("/{id}", s.updateUser)
				r.Patch("/{id}/role", s.setUserRole)
				r.Patch("/{id}/status", s.setUserStatus)
				r.Delete("/{id}", s.deleteUser)
			})
		})

		r.Route("/media", func(r chi.Router) {
			r.Use(authed)
			r.Get("/", s.listMedia)
			r.With(staff).Post("/upload", s.uploadMedia)
			r.With(editors).Delete("/{id}", s.deleteMedia)
		})

		r.Route("/security", func(r chi.Router) {
			r.Use(authed)
			r.Get("/settings", s.getSettings)
			r.Put("/settings", s.updateSettings)
			r.Post("/2fa/enable", s.enableTwoFactor)
			r.Post("/2fa/disable", s.disableTwoFactor)
			r.Get("/sessions", s.listSessions)
			r.Delete("/sessions", s.revokeOtherSessions)
			r.Delete("/sessions/{id}", s.revokeSession)
			r.Get("/login-history", s.loginHistory)
			r.Get("/api-keys", s.listAPIKeys)
			r.Post("/api-keys", s.createAPIKey)
			r.Delete("/api-keys/{id}", s.revokeAPIKey)
		})
	})

	return r
}

// validateToken accepts tokens whose session is live and whose user is active.
// The role is read from the account, so role changes apply immediately.
func (s *Server) validateToken(raw string) (*middleware.Claims, error) {
	claims, err := s.tokens.parse(raw)
	if err != nil {
		return nil, err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	sess, ok := s.state.sessions[claims.ID]
	if !ok || sess.revoked || sess.userID != claims.Subject {
		return nil, errors.New("session revoked")
	}
	rec, ok := s.state.users[claims.Subject]
	if !ok || !rec.user.IsActive {
		return nil, errors.New("account unavailable")
	}
	sess.session.LastActive = s.now()
	return &middleware.Claims{UserID: rec.user.ID, Role: string(rec.user.Role)}, nil
}

// sessionID returns the session named by the request's bearer token.
func (s *Server) sessionID(r *http.Request) string {
	raw, ok := middleware.BearerToken(r)
	if !ok {
		return ""
	}
	claims, err := s.tokens.parse(raw)
	if err != nil {
		return ""
	}
	return claims.ID
}

func (s *Server) checkSigner(context.Context) error {
	raw, _, err := s.tokens.issue("health", string(domain.RoleUser), "health")
	if err != nil {
		return err
	}
	_, err = s.tokens.parse(raw)
	return err
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err, s.logger)
}

// decode reads and validates a JSON body, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := validator.DecodeAndValidate(r, dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// caller returns the authenticated account. It must run behind Auth.
func (s *Server) caller(r *http.Request) (*userRecord, error) {
	id := middleware.UserIDFromContext(r.Context())
	rec, ok := s.state.users[id]
	if !ok {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}
	return rec, nil
}
