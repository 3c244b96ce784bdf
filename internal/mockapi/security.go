package mockapi

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
	"github.com/Gilberthb/Umunsi-sub002/pkg/httputil"
	"github.com/Gilberthb/Umunsi-sub002/pkg/pagination"
)

const backupCodeCount = 8

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	rec, err := s.caller(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteResource(w, http.StatusOK, "settings", *s.state.settingsFor(rec.user.ID))
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var in domain.SecuritySettings
	if !s.decode(w, r, &in) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	rec, err := s.caller(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	current := s.state.settingsFor(rec.user.ID)
	// Two-factor is only switched through its own endpoints.
	in.TwoFactorEnabled = current.TwoFactorEnabled
	if in.IPWhitelist == nil {
		in.IPWhitelist = []string{}
	}
	*current = in
	httputil.WriteResource(w, http.StatusOK, "settings", *current)
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

func (s *Server) enableTwoFactor(w http.ResponseWriter, r *http.Request) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	rec, err := s.caller(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	settings := s.state.settingsFor(rec.user.ID)
	if settings.TwoFactorEnabled {
		s.fail(w, r, apperrors.InvalidInput("Two-factor authentication is already enabled"))
		return
	}

	raw, err := randomBytes(20)
	if err != nil {
		s.fail(w, r, apperrors.Internal(err))
		return
	}
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)
	setup := domain.TwoFactorSetup{
		Secret: secret,
		OTPAuthURL: fmt.Sprintf("otpauth://totp/Newsdesk:%s?secret=%s&issuer=Newsdesk",
			url.PathEscape(rec.user.Email), secret),
		BackupCodes: make([]string, 0, backupCodeCount),
	}
	for range backupCodeCount {
		code, err := randomBytes(4)
		if err != nil {
			s.fail(w, r, apperrors.Internal(err))
			return
		}
		setup.BackupCodes = append(setup.BackupCodes, hex.EncodeToString(code))
	}

	enabled := true
	settings.TwoFactorEnabled = true
	rec.user.TwoFactorEnabled = &enabled
	httputil.WriteResource(w, http.StatusOK, "twoFactor", setup)
}

type passwordBody struct {
	Password string `json:"password" validate:"required"`
}

func (s *Server) disableTwoFactor(w http.ResponseWriter, r *http.Request) {
	var body passwordBody
	if !s.decode(w, r, &body) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	rec, err := s.caller(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(body.Password)) != nil {
		s.fail(w, r, apperrors.InvalidInput("Password is incorrect"))
		return
	}
	disabled := false
	s.state.settingsFor(rec.user.ID).TwoFactorEnabled = false
	rec.user.TwoFactorEnabled = &disabled
	httputil.WriteMessage(w, http.StatusOK, "Two-factor authentication disabled")
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	current := s.sessionID(r)

	s.state.mu.RLock()
	rec, err := s.caller(r)
	if err != nil {
		s.state.mu.RUnlock()
		s.fail(w, r, err)
		return
	}
	sessions := make([]domain.Session, 0)
	for _, sess := range s.state.sessions {
		if sess.userID != rec.user.ID || sess.revoked {
			continue
		}
		out := sess.session
		out.Current = out.ID == current
		sessions = append(sessions, out)
	}
	s.state.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.After(sessions[j].CreatedAt) })
	httputil.WriteJSON(w, http.StatusOK, httputil.ListResponse[domain.Session]{Data: sessions, Total: len(sessions)})
}

func (s *Server) revokeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current := s.sessionID(r)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	rec, err := s.caller(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess, ok := s.state.sessions[id]
	if !ok || sess.revoked || sess.userID != rec.user.ID {
		s.fail(w, r, apperrors.NotFound("session", id))
		return
	}
	if id == current {
		s.fail(w, r, apperrors.InvalidInput("Use logout to end the current session"))
		return
	}
	sess.revoked = true
	httputil.WriteMessage(w, http.StatusOK, "Session revoked")
}

func (s *Server) revokeOtherSessions(w http.ResponseWriter, r *http.Request) {
	current := s.sessionID(r)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	rec, err := s.caller(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	revoked := 0
	for id, sess := range s.state.sessions {
		if sess.userID == rec.user.ID && id != current && !sess.revoked {
			sess.revoked = true
			revoked++
		}
	}
	httputil.WriteMessage(w, http.StatusOK, fmt.Sprintf("%d other sessions revoked", revoked))
}

func (s *Server) loginHistory(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	s.state.mu.RLock()
	rec, err := s.caller(r)
	if err != nil {
		s.state.mu.RUnlock()
		s.fail(w, r, err)
		return
	}
	attempts := append([]domain.LoginAttempt{}, s.state.history[rec.user.ID]...)
	s.state.mu.RUnlock()

	sort.SliceStable(attempts, func(i, j int) bool { return attempts[i].CreatedAt.After(attempts[j].CreatedAt) })
	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(pagination.Slice(attempts, params), len(attempts), params))
}

func (s *Server) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	s.state.mu.RLock()
	rec, err := s.caller(r)
	if err != nil {
		s.state.mu.RUnlock()
		s.fail(w, r, err)
		return
	}
	keys := make([]domain.APIKey, 0)
	for _, k := range s.state.apiKeys {
		if k.userID != rec.user.ID || k.revoked {
			continue
		}
		out := k.key
		out.Key = ""
		keys = append(keys, out)
	}
	s.state.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].CreatedAt.After(keys[j].CreatedAt) })
	httputil.WriteJSON(w, http.StatusOK, httputil.ListResponse[domain.APIKey]{Data: keys, Total: len(keys)})
}

func (s *Server) createAPIKey(w http.ResponseWriter, r *http.Request) {
	var in domain.APIKeyInput
	if !s.decode(w, r, &in) {
		return
	}
	raw, err := randomBytes(24)
	if err != nil {
		s.fail(w, r, apperrors.Internal(err))
		return
	}
	secret := "nk_" + hex.EncodeToString(raw)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	rec, err := s.caller(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	perms := in.Permissions
	if len(perms) == 0 {
		perms = []string{"read"}
	}
	now := s.now()
	key := domain.APIKey{
		ID:          newID(),
		Name:        in.Name,
		Prefix:      secret[:11],
		Key:         secret,
		Permissions: perms,
		CreatedAt:   now,
	}
	if in.ExpiresInDays > 0 {
		expires := now.Add(time.Duration(in.ExpiresInDays) * 24 * time.Hour)
		key.ExpiresAt = &expires
	}
	s.state.apiKeys[key.ID] = &apiKeyRecord{key: key, userID: rec.user.ID}
	httputil.WriteResource(w, http.StatusCreated, "apiKey", key)
}

func (s *Server) revokeAPIKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	rec, err := s.caller(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	k, ok := s.state.apiKeys[id]
	if !ok || k.revoked || k.userID != rec.user.ID {
		s.fail(w, r, apperrors.NotFound("API key", id))
		return
	}
	k.revoked = true
	httputil.WriteMessage(w, http.StatusOK, "API key revoked")
}
