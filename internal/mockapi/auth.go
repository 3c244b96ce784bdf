package mockapi

import (
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
	"github.com/Gilberthb/Umunsi-sub002/pkg/httputil"
	"github.com/Gilberthb/Umunsi-sub002/pkg/validator"
)

type loginBody struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := validator.DecodeAndValidate(r, &body); err != nil {
		s.fail(w, r, apperrors.InvalidInput("Email and password are required"))
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	rec := s.state.findLogin(body.Email)
	if rec == nil {
		s.fail(w, r, apperrors.Unauthorized("Invalid credentials"))
		return
	}
	now := s.now()
	ip, agent := clientIP(r), r.UserAgent()
	if rec.locked {
		s.state.recordAttempt(rec.user.ID, ip, agent, false, "account locked", now)
		s.fail(w, r, apperrors.Locked("Account is locked"))
		return
	}
	if bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(body.Password)) != nil {
		s.state.recordAttempt(rec.user.ID, ip, agent, false, "invalid password", now)
		s.fail(w, r, apperrors.Unauthorized("Invalid credentials"))
		return
	}
	if !rec.user.IsActive {
		s.state.recordAttempt(rec.user.ID, ip, agent, false, "account deactivated", now)
		s.fail(w, r, apperrors.Forbidden("Account is deactivated"))
		return
	}

	token, err := s.openSession(rec, r)
	if err != nil {
		s.fail(w, r, apperrors.Internal(err))
		return
	}
	rec.user.LastLogin = &now
	s.state.recordAttempt(rec.user.ID, ip, agent, true, "", now)

	httputil.WriteJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "Login successful",
		User:    rec.user,
		Token:   token,
	})
}

type authResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    domain.User `json:"user"`
	Token   string      `json:"token"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body domain.RegisterRequest
	if !s.decode(w, r, &body) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if s.state.identityTaken(body.Username, body.Email, "") {
		s.fail(w, r, apperrors.Conflict("User with this email or username already exists"))
		return
	}
	rec, err := s.insertUser(Account{
		Username:  body.Username,
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Role:      domain.RoleUser,
	})
	if err != nil {
		s.fail(w, r, apperrors.Internal(err))
		return
	}
	token, err := s.openSession(rec, r)
	if err != nil {
		s.fail(w, r, apperrors.Internal(err))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, authResponse{
		Success: true,
		Message: "Registration successful",
		User:    rec.user,
		Token:   token,
	})
}

// openSession records a session for rec and signs a token naming it.
// The caller holds the state lock.
func (s *Server) openSession(rec *userRecord, r *http.Request) (string, error) {
	id := newID()
	token, _, err := s.tokens.issue(rec.user.ID, string(rec.user.Role), id)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	now := s.now()
	device := r.UserAgent()
	if device == "" {
		device = "unknown"
	}
	s.state.sessions[id] = &sessionRecord{
		userID: rec.user.ID,
		session: domain.Session{
			ID:         id,
			Device:     device,
			IPAddress:  clientIP(r),
			LastActive: now,
			CreatedAt:  now,
		},
	}
	return token, nil
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(r)

	s.state.mu.Lock()
	if sess, ok := s.state.sessions[id]; ok {
		sess.revoked = true
	}
	s.state.mu.Unlock()

	httputil.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	rec, err := s.caller(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteResource(w, http.StatusOK, "user", rec.user)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var body domain.ChangePasswordRequest
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
	if bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(body.CurrentPassword)) != nil {
		s.fail(w, r, apperrors.InvalidInput("Current password is incorrect"))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), s.cost)
	if err != nil {
		s.fail(w, r, apperrors.Internal(err))
		return
	}
	rec.passwordHash = hash
	httputil.WriteMessage(w, http.StatusOK, "Password changed successfully")
}
