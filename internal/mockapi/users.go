package mockapi

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
	"github.com/Gilberthb/Umunsi-sub002/pkg/httputil"
	"github.com/Gilberthb/Umunsi-sub002/pkg/middleware"
	"github.com/Gilberthb/Umunsi-sub002/pkg/pagination"
)

var userOrder = map[string]func(a, b domain.User) bool{
	"createdAt": func(a, b domain.User) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"username":  func(a, b domain.User) bool { return a.Username < b.Username },
	"email":     func(a, b domain.User) bool { return strings.ToLower(a.Email) < strings.ToLower(b.Email) },
	"lastLogin": func(a, b domain.User) bool { return timeOrZero(a.LastLogin).Before(timeOrZero(b.LastLogin)) },
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := pagination.FromRequest(r)
	sortBy, desc, err := sortParams(r, "createdAt", func(f string) bool { _, ok := userOrder[f]; return ok })
	if err != nil {
		s.fail(w, r, err)
		return
	}
	role := domain.Role(q.Get("role"))
	if role != "" && !role.Valid() {
		s.fail(w, r, apperrors.InvalidInput("Invalid role: "+string(role)))
		return
	}
	var active *bool
	switch q.Get("status") {
	case "":
	case "active":
		v := true
		active = &v
	case "inactive":
		v := false
		active = &v
	default:
		s.fail(w, r, apperrors.InvalidInput("status must be active or inactive"))
		return
	}
	search := q.Get("search")

	s.state.mu.RLock()
	matched := make([]domain.User, 0, len(s.state.users))
	for _, rec := range s.state.users {
		u := rec.user
		switch {
		case role != "" && u.Role != role,
			active != nil && u.IsActive != *active,
			search != "" && !containsFold(u.Username, search) && !containsFold(u.Email, search) && !containsFold(u.FullName(), search):
			continue
		}
		matched = append(matched, u)
	}
	s.state.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	sortedBy(matched, desc, userOrder[sortBy])

	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(pagination.Slice(matched, params), len(matched), params))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	rec, ok := s.state.users[id]
	if !ok {
		s.fail(w, r, apperrors.NotFound("user", id))
		return
	}
	httputil.WriteResource(w, http.StatusOK, "user", rec.user)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in domain.CreateUserRequest
	if !s.decode(w, r, &in) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if s.state.identityTaken(in.Username, in.Email, "") {
		s.fail(w, r, apperrors.Conflict("User with this email or username already exists"))
		return
	}
	rec, err := s.insertUser(Account{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
	})
	if err != nil {
		s.fail(w, r, apperrors.Internal(err))
		return
	}
	httputil.WriteResource(w, http.StatusCreated, "user", rec.user)
}

// applyUserUpdate changes the non-empty fields of in. The caller holds the
// state lock.
func (s *Server) applyUserUpdate(rec *userRecord, in domain.UpdateUserRequest) error {
	if s.state.identityTaken(in.Username, in.Email, rec.user.ID) {
		return apperrors.Conflict("User with this email or username already exists")
	}
	if in.Username != "" {
		rec.user.Username = in.Username
	}
	if in.Email != "" {
		rec.user.Email = in.Email
	}
	if in.FirstName != "" {
		rec.user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		rec.user.LastName = in.LastName
	}
	return nil
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UpdateUserRequest
	if !s.decode(w, r, &in) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	id := chi.URLParam(r, "id")
	rec, ok := s.state.users[id]
	if !ok {
		s.fail(w, r, apperrors.NotFound("user", id))
		return
	}
	if err := s.applyUserUpdate(rec, in); err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteResource(w, http.StatusOK, "user", rec.user)
}

type roleBody struct {
	Role domain.Role `json:"role" validate:"required,oneof=ADMIN EDITOR AUTHOR USER"`
}

func (s *Server) setUserRole(w http.ResponseWriter, r *http.Request) {
	var body roleBody
	if !s.decode(w, r, &body) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	id := chi.URLParam(r, "id")
	rec, ok := s.state.users[id]
	if !ok {
		s.fail(w, r, apperrors.NotFound("user", id))
		return
	}
	if id == middleware.UserIDFromContext(r.Context()) && body.Role != domain.RoleAdmin {
		s.fail(w, r, apperrors.InvalidInput("You cannot remove your own administrator role"))
		return
	}
	rec.user.Role = body.Role
	httputil.WriteResource(w, http.StatusOK, "user", rec.user)
}

type activeBody struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

func (s *Server) setUserStatus(w http.ResponseWriter, r *http.Request) {
	var body activeBody
	if !s.decode(w, r, &body) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	id := chi.URLParam(r, "id")
	rec, ok := s.state.users[id]
	if !ok {
		s.fail(w, r, apperrors.NotFound("user", id))
		return
	}
	if id == middleware.UserIDFromContext(r.Context()) && !*body.IsActive {
		s.fail(w, r, apperrors.InvalidInput("You cannot deactivate your own account"))
		return
	}
	rec.user.IsActive = *body.IsActive
	httputil.WriteResource(w, http.StatusOK, "user", rec.user)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if _, ok := s.state.users[id]; !ok {
		s.fail(w, r, apperrors.NotFound("user", id))
		return
	}
	if id == middleware.UserIDFromContext(r.Context()) {
		s.fail(w, r, apperrors.InvalidInput("You cannot delete your own account"))
		return
	}
	delete(s.state.users, id)
	for _, sess := range s.state.sessions {
		if sess.userID == id {
			sess.revoked = true
		}
	}
	httputil.WriteMessage(w, http.StatusOK, "User deleted successfully")
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in domain.UpdateUserRequest
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
	if err := s.applyUserUpdate(rec, in); err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteResource(w, http.StatusOK, "user", rec.user)
}

func (s *Server) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	file, err := readUpload(w, r, "avatar", maxImageBytes, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	rec, err := s.caller(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	url := fmt.Sprintf("/uploads/avatars/%s%s", rec.user.ID, strings.ToLower(filepath.Ext(file.name)))
	rec.user.Avatar = &url
	httputil.WriteResource(w, http.StatusOK, "user", rec.user)
}
