// Package session owns the authentication lifecycle of a newsroom client: the
// current identity, the persisted bearer token and the operations that move
// between signed-out and signed-in.
//
// Overlapping operations are ordered by sequence number. Each operation takes
// the next number when it starts, and its result is applied only if no
// operation issued after it has already been applied, so a response that
// resolves late never overwrites a fresher one. Logout is a fence: it
// discards everything issued before it, and refreshes started while it is in
// flight, since those read the token it is about to end.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	"github.com/Gilberthb/Umunsi-sub002/internal/tokenstore"
	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
	"github.com/Gilberthb/Umunsi-sub002/pkg/logger"
	"github.com/Gilberthb/Umunsi-sub002/pkg/validator"
)

var (
	// ErrNoToken is returned by RefreshUser when no token is stored.
	ErrNoToken = fmt.Errorf("no stored session token: %w", apperrors.ErrUnauthorized)

	// ErrSuperseded is returned by Login and Register when a later operation
	// was applied first and this result was discarded.
	ErrSuperseded = errors.New("session operation superseded by a newer one")
)

// API is the part of the CMS client the session depends on.
type API interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*domain.User, error)
	ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error
}

// Config holds session tuning.
type Config struct {
	// RetryInterval is the reconciler's tick.
	RetryInterval time.Duration
	// MaxRefreshFailures is how many consecutive refresh failures, other than
	// network errors and 401s, are tolerated before the token is cleared.
	MaxRefreshFailures int
}

// DefaultConfig returns the defaults used when nothing is configured.
func DefaultConfig() Config {
	return Config{RetryInterval: 5 * time.Second, MaxRefreshFailures: 3}
}

// State is a read-only snapshot of the session.
type State struct {
	User            *domain.User
	IsAuthenticated bool
	IsLoading       bool
	// Ready is set once bootstrap has settled.
	Ready bool
}

// Session is the single source of truth for who is signed in.
type Session struct {
	api    API
	store  tokenstore.Store
	cfg    Config
	logger *slog.Logger

	mu           sync.Mutex
	user         *domain.User
	hasToken     bool
	bootstrapped bool
	inflight     int
	issued       uint64
	applied      uint64
	signedIn     uint64
	loggingOut   int
	generation   uint64
	failures     int
	subs         map[int]chan State
	nextSub      int

	bootOnce sync.Once
	bootErr  error
}

// New creates a signed-out session. Call Bootstrap before relying on State.
func New(api API, store tokenstore.Store, cfg Config, l *slog.Logger) *Session {
	def := DefaultConfig()
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = def.RetryInterval
	}
	if cfg.MaxRefreshFailures <= 0 {
		cfg.MaxRefreshFailures = def.MaxRefreshFailures
	}
	if l == nil {
		l = logger.Discard()
	}
	return &Session{
		api:    api,
		store:  store,
		cfg:    cfg,
		logger: l,
		subs:   make(map[int]chan State),
	}
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// User returns the signed-in identity, or nil.
func (s *Session) User() *domain.User {
	return s.State().User
}

// IsAuthenticated reports whether a user is signed in.
func (s *Session) IsAuthenticated() bool {
	return s.State().IsAuthenticated
}

// IsLoading reports whether an operation or the bootstrap is in progress.
func (s *Session) IsLoading() bool {
	return s.State().IsLoading
}

func (s *Session) stateLocked() State {
	var u *domain.User
	if s.user != nil {
		cp := *s.user
		u = &cp
	}
	return State{
		User:            u,
		IsAuthenticated: s.user != nil,
		IsLoading:       s.inflight > 0 || !s.bootstrapped,
		Ready:           s.bootstrapped,
	}
}

// Subscribe returns a channel that receives the current state and then
// every change. Only the newest unread state is kept, so a slow reader never
// blocks the session. The cancel function closes the channel.
func (s *Session) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.stateLocked()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Session) publishLocked() {
	st := s.stateLocked()
	if st.IsAuthenticated {
		sessionAuthenticated.Set(1)
	} else {
		sessionAuthenticated.Set(0)
	}
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}

// ticket identifies one in-flight operation.
type ticket struct {
	seq uint64
	gen uint64
	// refresh results also require an unchanged generation and no logout in
	// flight when they started.
	refresh bool
	fenced  bool
}

// begin registers an in-flight operation and returns its ticket.
func (s *Session) begin(refresh bool) ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.inflight++
	s.publishLocked()
	return ticket{seq: s.issued, gen: s.generation, refresh: refresh, fenced: s.loggingOut > 0}
}

func (s *Session) currentLocked(t ticket) bool {
	if t.seq <= s.applied {
		return false
	}
	return !t.refresh || (!t.fenced && t.gen == s.generation)
}

// finish ends the operation t. apply, when non-nil, runs under the lock only
// if the operation is still current. finish reports whether apply ran.
func (s *Session) finish(t ticket, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	ran := false
	if apply != nil && s.currentLocked(t) {
		s.applied = t.seq
		apply()
		ran = true
	}
	s.publishLocked()
	return ran
}

// Login signs in with an email or username and password. Rejected
// credentials are returned as *errors.AuthError and leave the state as it was.
func (s *Session) Login(ctx context.Context, creds domain.Credentials) error {
	if err := validator.Validate(creds); err != nil {
		return &apperrors.AuthError{Message: err.Error(), Err: err}
	}
	return s.authenticate(ctx, "login", func() (*domain.AuthResult, error) {
		return s.api.Login(ctx, creds)
	})
}

// Register creates an account and signs it in, with the same contract as Login.
func (s *Session) Register(ctx context.Context, req domain.RegisterRequest) error {
	if err := validator.Validate(req); err != nil {
		return &apperrors.AuthError{Message: err.Error(), Err: err}
	}
	return s.authenticate(ctx, "register", func() (*domain.AuthResult, error) {
		return s.api.Register(ctx, req)
	})
}

func (s *Session) authenticate(ctx context.Context, op string, call func() (*domain.AuthResult, error)) error {
	t := s.begin(false)

	res, err := call()
	if err != nil {
		s.finish(t, nil)
		s.logger.InfoContext(ctx, op+" failed", slog.String("error", err.Error()))
		return err
	}

	var saveErr error
	applied := s.finish(t, func() {
		// Storage must not be abandoned halfway because the caller gave up.
		if saveErr = s.store.Save(context.WithoutCancel(ctx), res.Token); saveErr != nil {
			return
		}
		s.user = res.User
		s.hasToken = true
		s.failures = 0
		s.signedIn = t.seq
		s.generation++
	})
	switch {
	case !applied:
		s.logger.DebugContext(ctx, op+" result discarded", slog.Uint64("seq", t.seq))
		return ErrSuperseded
	case saveErr != nil:
		return fmt.Errorf("persist session token: %w", saveErr)
	}

	s.logger.InfoContext(ctx, "signed in",
		slog.String("op", op),
		slog.String("user_id", res.User.ID),
		slog.String("role", string(res.User.Role)),
	)
	return nil
}

// Logout ends the local session. The server-side invalidation is best
// effort: its failure is logged and never returned. When Logout returns, the
// user and the stored token are cleared unless a sign-in started after it
// has already completed.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.applied = seq
	s.inflight++
	s.loggingOut++
	s.generation++
	s.publishLocked()
	s.mu.Unlock()

	if err := s.api.Logout(ctx); err != nil {
		s.logger.WarnContext(ctx, "server-side logout failed", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.loggingOut--
	if s.signedIn > seq {
		s.publishLocked()
		s.logger.DebugContext(ctx, "logout overtaken by a later sign-in", slog.Uint64("seq", seq))
		return
	}
	s.user = nil
	if err := s.store.Clear(context.WithoutCancel(ctx)); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear stored token", slog.String("error", err.Error()))
	}
	s.hasToken = false
	s.failures = 0
	s.generation++
	s.publishLocked()
	s.logger.InfoContext(ctx, "signed out")
}

// RefreshUser re-fetches the identity behind the stored token. Every failure
// clears the user. A 401 also clears the token; network errors never do;
// other failures clear it after MaxRefreshFailures in a row.
func (s *Session) RefreshUser(ctx context.Context) error {
	t := s.begin(true)

	token, err := s.store.Load(ctx)
	if err != nil {
		s.finish(t, func() { s.user = nil })
		return fmt.Errorf("load session token: %w", err)
	}
	if token == "" {
		s.finish(t, func() {
			s.user = nil
			s.hasToken = false
		})
		return ErrNoToken
	}

	user, err := s.api.Me(ctx)
	if err == nil {
		s.finish(t, func() {
			s.user = user
			s.hasToken = true
			s.failures = 0
		})
		sessionRefreshTotal.WithLabelValues("succeeded").Inc()
		return nil
	}

	var (
		failures int
		cleared  bool
	)
	s.finish(t, func() {
		s.user = nil
		s.failures++
		failures = s.failures
		if s.shouldClearToken(err) {
			if cerr := s.store.Clear(context.WithoutCancel(ctx)); cerr != nil {
				s.logger.ErrorContext(ctx, "failed to clear stored token", slog.String("error", cerr.Error()))
				return
			}
			s.hasToken = false
			s.failures = 0
			cleared = true
		}
	})
	sessionRefreshTotal.WithLabelValues("failed").Inc()

	s.logger.WarnContext(ctx, "session refresh failed",
		slog.String("error", err.Error()),
		slog.Int("consecutive_failures", failures),
	)
	if cleared {
		s.logger.InfoContext(ctx, "stored token cleared after refresh failure")
	}
	return err
}

// shouldClearToken decides whether a refresh failure ends the stored token.
// The caller holds the lock and has already counted the failure.
func (s *Session) shouldClearToken(err error) bool {
	switch {
	case errors.Is(err, apperrors.ErrNetwork):
		return false
	case errors.Is(err, apperrors.ErrUnauthorized):
		return true
	default:
		return s.failures >= s.cfg.MaxRefreshFailures
	}
}

// Bootstrap hydrates the session from storage. It runs once; later calls
// return the first result. Without a stored token it completes with no
// network call. With one, it settles after exactly one refresh round-trip.
func (s *Session) Bootstrap(ctx context.Context) error {
	s.bootOnce.Do(func() {
		s.bootErr = s.bootstrap(ctx)
	})
	return s.bootErr
}

func (s *Session) bootstrap(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.bootstrapped = true
		s.publishLocked()
		s.mu.Unlock()
	}()

	token, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session token: %w", err)
	}
	if token == "" {
		s.logger.DebugContext(ctx, "no stored session")
		return nil
	}

	s.mu.Lock()
	s.hasToken = true
	s.mu.Unlock()

	if exp, ok := tokenExpiry(token); ok && exp.Before(time.Now()) {
		s.logger.WarnContext(ctx, "stored token has expired", slog.Time("expired_at", exp))
	}
	return s.RefreshUser(ctx)
}

// ChangePassword changes the signed-in user's password.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	return s.api.ChangePassword(ctx, domain.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
}

// TokenExpiry returns the expiry claimed by the stored token, when it is a
// JWT carrying one.
func (s *Session) TokenExpiry(ctx context.Context) (time.Time, bool) {
	token, err := s.store.Load(ctx)
	if err != nil || token == "" {
		return time.Time{}, false
	}
	return tokenExpiry(token)
}
