package mockapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
)

type userRecord struct {
	user         domain.User
	passwordHash []byte
	locked       bool
}

type sessionRecord struct {
	session domain.Session
	userID  string
	revoked bool
}

type apiKeyRecord struct {
	key     domain.APIKey
	userID  string
	revoked bool
}

// state is the mock's whole dataset. Every access holds mu.
type state struct {
	mu         sync.RWMutex
	users      map[string]*userRecord
	articles   map[string]*domain.Article
	categories map[string]*domain.Category
	media      map[string]*domain.Media
	sessions   map[string]*sessionRecord
	history    map[string][]domain.LoginAttempt
	settings   map[string]*domain.SecuritySettings
	apiKeys    map[string]*apiKeyRecord
}

func newState() *state {
	return &state{
		users:      make(map[string]*userRecord),
		articles:   make(map[string]*domain.Article),
		categories: make(map[string]*domain.Category),
		media:      make(map[string]*domain.Media),
		sessions:   make(map[string]*sessionRecord),
		history:    make(map[string][]domain.LoginAttempt),
		settings:   make(map[string]*domain.SecuritySettings),
		apiKeys:    make(map[string]*apiKeyRecord),
	}
}

func newID() string { return uuid.NewString() }

// findLogin matches an email (case-insensitively) or a username.
func (st *state) findLogin(identifier string) *userRecord {
	for _, rec := range st.users {
		if strings.EqualFold(rec.user.Email, identifier) || rec.user.Username == identifier {
			return rec
		}
	}
	return nil
}

func (st *state) identityTaken(username, email, exceptID string) bool {
	for id, rec := range st.users {
		if id == exceptID {
			continue
		}
		if (username != "" && rec.user.Username == username) || (email != "" && strings.EqualFold(rec.user.Email, email)) {
			return true
		}
	}
	return false
}

func (st *state) slugTaken(slug, exceptID string) bool {
	for id, a := range st.articles {
		if id != exceptID && a.Slug == slug {
			return true
		}
	}
	return false
}

func (st *state) categorySlugTaken(slug, exceptID string) bool {
	for id, c := range st.categories {
		if id != exceptID && c.Slug == slug {
			return true
		}
	}
	return false
}

// categoryByRef resolves a category by id or slug.
func (st *state) categoryByRef(ref string) *domain.Category {
	if c, ok := st.categories[ref]; ok {
		return c
	}
	for _, c := range st.categories {
		if c.Slug == ref {
			return c
		}
	}
	return nil
}

func (st *state) articleCount(categoryID string) int {
	n := 0
	for _, a := range st.articles {
		if a.CategoryID == categoryID {
			n++
		}
	}
	return n
}

// hydrate fills the embedded category and author summaries of a copy of a.
func (st *state) hydrate(a *domain.Article) domain.Article {
	out := *a
	out.Tags = append([]string{}, a.Tags...)
	if c, ok := st.categories[a.CategoryID]; ok {
		out.Category = &domain.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
	}
	if u, ok := st.users[a.AuthorID]; ok {
		out.Author = &domain.AuthorRef{
			ID:        u.user.ID,
			Username:  u.user.Username,
			FirstName: u.user.FirstName,
			LastName:  u.user.LastName,
		}
	}
	return out
}

func (st *state) settingsFor(userID string) *domain.SecuritySettings {
	s, ok := st.settings[userID]
	if !ok {
		s = &domain.SecuritySettings{SessionTimeout: 60, PasswordExpiryDays: 90, IPWhitelist: []string{}}
		st.settings[userID] = s
	}
	return s
}

func (st *state) recordAttempt(userID, ip, agent string, success bool, reason string, at time.Time) {
	st.history[userID] = append(st.history[userID], domain.LoginAttempt{
		ID:        newID(),
		IPAddress: ip,
		UserAgent: agent,
		Success:   success,
		Reason:    reason,
		CreatedAt: at,
	})
}

// sortedBy orders items by the named field. less reports ascending order.
func sortedBy[T any](items []T, desc bool, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
