package mockapi

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	"github.com/Gilberthb/Umunsi-sub002/pkg/slug"
)

// Account describes a user to create directly in the dataset.
type Account struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
	Inactive  bool
}

// insertUser stores a new account. The caller holds the state lock.
func (s *Server) insertUser(a Account) (*userRecord, error) {
	if a.Role == "" {
		a.Role = domain.RoleUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	disabled := false
	rec := &userRecord{
		passwordHash: hash,
		user: domain.User{
			ID:               newID(),
			Username:         a.Username,
			Email:            a.Email,
			FirstName:        a.FirstName,
			LastName:         a.LastName,
			Role:             a.Role,
			TwoFactorEnabled: &disabled,
			IsActive:         !a.Inactive,
			CreatedAt:        s.now(),
		},
	}
	s.state.users[rec.user.ID] = rec
	return rec, nil
}

// AddUser creates an account that can log in with a.Password.
func (s *Server) AddUser(a Account) (domain.User, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if s.state.identityTaken(a.Username, a.Email, "") {
		return domain.User{}, fmt.Errorf("user %s already exists", a.Email)
	}
	rec, err := s.insertUser(a)
	if err != nil {
		return domain.User{}, err
	}
	return rec.user, nil
}

// LockUser locks or unlocks an account. Locked accounts cannot log in.
func (s *Server) LockUser(id string, locked bool) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if rec, ok := s.state.users[id]; ok {
		rec.locked = locked
	}
}

// RevokeSessions ends every session of a user, as an expired or
// administratively revoked login would.
func (s *Server) RevokeSessions(userID string) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, sess := range s.state.sessions {
		if sess.userID == userID {
			sess.revoked = true
		}
	}
}

// IssueToken opens a session for a user without a password check.
func (s *Server) IssueToken(userID string) (string, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	rec, ok := s.state.users[userID]
	if !ok {
		return "", fmt.Errorf("user %s not found", userID)
	}
	return s.openSession(rec, &http.Request{Header: http.Header{"User-Agent": {"fixture"}}, RemoteAddr: "127.0.0.1:0"})
}

// AddCategory creates an active category.
func (s *Server) AddCategory(name string) domain.Category {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	c := &domain.Category{
		ID:        newID(),
		Name:      name,
		Slug:      slug.Generate(name),
		IsActive:  true,
		CreatedAt: s.now(),
	}
	s.state.categories[c.ID] = c
	return *c
}

// AddArticles creates n articles titled "<prefix> 1" to "<prefix> n" with
// strictly increasing creation times.
func (s *Server) AddArticles(n int, prefix, authorID, categoryID string, status domain.ArticleStatus) []domain.Article {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	base := s.now().Add(-time.Duration(n) * time.Minute)
	out := make([]domain.Article, 0, n)
	for i := 1; i <= n; i++ {
		title := fmt.Sprintf("%s %d", prefix, i)
		created := base.Add(time.Duration(i) * time.Minute)
		a := &domain.Article{
			ID:         newID(),
			Title:      title,
			Slug:       slug.Generate(title),
			Excerpt:    "Summary of " + title,
			Content:    "Body of " + title,
			Status:     status,
			Tags:       []string{},
			CategoryID: categoryID,
			AuthorID:   authorID,
			CreatedAt:  created,
			UpdatedAt:  created,
		}
		if status == domain.StatusPublished {
			a.PublishedAt = &created
		}
		s.state.articles[a.ID] = a
		out = append(out, s.state.hydrate(a))
	}
	return out
}

// FailNext makes the next times requests to method and path answer status
// before reaching any handler. path is relative to APIPrefix.
func (s *Server) FailNext(method, path string, status, times int) {
	s.faults.failNext(method, APIPrefix+path, status, times)
}

// Hits returns how many requests reached method and path, including
// injected failures. path is relative to APIPrefix.
func (s *Server) Hits(method, path string) int {
	return s.faults.count(method, APIPrefix+path)
}
