package mockapi

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
	"github.com/Gilberthb/Umunsi-sub002/pkg/httputil"
	"github.com/Gilberthb/Umunsi-sub002/pkg/middleware"
	"github.com/Gilberthb/Umunsi-sub002/pkg/pagination"
	"github.com/Gilberthb/Umunsi-sub002/pkg/slug"
)

const maxImageBytes = 10 << 20

var articleOrder = map[string]func(a, b domain.Article) bool{
	"createdAt": func(a, b domain.Article) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"updatedAt": func(a, b domain.Article) bool { return a.UpdatedAt.Before(b.UpdatedAt) },
	"publishedAt": func(a, b domain.Article) bool {
		return timeOrZero(a.PublishedAt).Before(timeOrZero(b.PublishedAt))
	},
	"title":     func(a, b domain.Article) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) },
	"viewCount": func(a, b domain.Article) bool { return a.ViewCount < b.ViewCount },
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// sortParams reads sortBy and sortOrder, defaulting to the given field in
// descending order.
func sortParams(r *http.Request, fallback string, known func(string) bool) (string, bool, error) {
	q := r.URL.Query()
	by := q.Get("sortBy")
	if by == "" {
		by = fallback
	}
	if !known(by) {
		return "", false, apperrors.InvalidInput("Invalid sort field: " + by)
	}
	switch q.Get("sortOrder") {
	case "", "desc":
		return by, true, nil
	case "asc":
		return by, false, nil
	default:
		return "", false, apperrors.InvalidInput("sortOrder must be asc or desc")
	}
}

// canSeeDrafts reports whether the caller may see unpublished articles.
func canSeeDrafts(r *http.Request) bool {
	switch domain.Role(middleware.RoleFromContext(r.Context())) {
	case domain.RoleAdmin, domain.RoleEditor, domain.RoleAuthor:
		return true
	}
	return false
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := pagination.FromRequest(r)

	sortBy, desc, err := sortParams(r, "createdAt", func(f string) bool { _, ok := articleOrder[f]; return ok })
	if err != nil {
		s.fail(w, r, err)
		return
	}
	status := domain.ArticleStatus(q.Get("status"))
	if status != "" && !status.Valid() {
		s.fail(w, r, apperrors.InvalidInput("Invalid status: "+string(status)))
		return
	}
	if !canSeeDrafts(r) {
		if status != "" && status != domain.StatusPublished {
			httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse([]domain.Article{}, 0, params))
			return
		}
		status = domain.StatusPublished
	}
	var featured *bool
	if raw := q.Get("featured"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			s.fail(w, r, apperrors.InvalidInput("featured must be true or false"))
			return
		}
		featured = &b
	}
	search := q.Get("search")

	s.state.mu.RLock()
	categoryID := ""
	if ref := q.Get("category"); ref != "" {
		c := s.state.categoryByRef(ref)
		if c == nil {
			s.state.mu.RUnlock()
			httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse([]domain.Article{}, 0, params))
			return
		}
		categoryID = c.ID
	}
	matched := make([]domain.Article, 0, len(s.state.articles))
	for _, a := range s.state.articles {
		switch {
		case status != "" && a.Status != status,
			categoryID != "" && a.CategoryID != categoryID,
			featured != nil && a.IsFeatured != *featured,
			search != "" && !containsFold(a.Title, search) && !containsFold(a.Excerpt, search) && !containsFold(a.Content, search):
			continue
		}
		matched = append(matched, s.state.hydrate(a))
	}
	s.state.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	sortedBy(matched, desc, articleOrder[sortBy])

	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(pagination.Slice(matched, params), len(matched), params))
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	a, ok := s.state.articles[id]
	if !ok || (a.Status != domain.StatusPublished && !canSeeDrafts(r)) {
		s.fail(w, r, apperrors.NotFound("article", id))
		return
	}
	httputil.WriteResource(w, http.StatusOK, "article", s.state.hydrate(a))
}

func (s *Server) getArticleBySlug(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "slug")

	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	for _, a := range s.state.articles {
		if a.Slug == ref && a.Status == domain.StatusPublished {
			httputil.WriteResource(w, http.StatusOK, "article", s.state.hydrate(a))
			return
		}
	}
	s.fail(w, r, apperrors.NotFound("article", ref))
}

func (s *Server) recordView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	a, ok := s.state.articles[id]
	if !ok {
		s.fail(w, r, apperrors.NotFound("article", id))
		return
	}
	a.ViewCount++
	httputil.WriteResource(w, http.StatusOK, "viewCount", a.ViewCount)
}

// applyArticleInput copies in onto a after checking slug and category.
// The caller holds the state lock.
func (s *Server) applyArticleInput(a *domain.Article, in domain.ArticleInput) error {
	ref := in.Slug
	if ref == "" {
		ref = slug.Generate(in.Title)
	}
	if ref == "" {
		return apperrors.InvalidInput("Title must contain letters or digits")
	}
	if s.state.slugTaken(ref, a.ID) {
		return apperrors.Conflict("An article with this slug already exists")
	}
	if _, ok := s.state.categories[in.CategoryID]; !ok {
		return apperrors.InvalidInput("Category not found")
	}

	a.Title = in.Title
	a.Slug = ref
	a.Excerpt = in.Excerpt
	a.Content = in.Content
	a.CategoryID = in.CategoryID
	a.Tags = append([]string{}, in.Tags...)
	a.IsFeatured = in.IsFeatured
	if in.FeaturedImage != "" {
		img := in.FeaturedImage
		a.FeaturedImage = &img
	}
	status := in.Status
	if status == "" {
		status = a.Status
	}
	if status == "" {
		status = domain.StatusDraft
	}
	s.setStatus(a, status)
	return nil
}

func (s *Server) setStatus(a *domain.Article, status domain.ArticleStatus) {
	now := s.now()
	if status == domain.StatusPublished && a.PublishedAt == nil {
		a.PublishedAt = &now
	}
	a.Status = status
	a.UpdatedAt = now
}

func (s *Server) createArticle(w http.ResponseWriter, r *http.Request) {
	var in domain.ArticleInput
	if !s.decode(w, r, &in) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	now := s.now()
	a := &domain.Article{
		ID:        newID(),
		AuthorID:  middleware.UserIDFromContext(r.Context()),
		CreatedAt: now,
	}
	if err := s.applyArticleInput(a, in); err != nil {
		s.fail(w, r, err)
		return
	}
	s.state.articles[a.ID] = a
	httputil.WriteResource(w, http.StatusCreated, "article", s.state.hydrate(a))
}

// editable loads an article the caller may change. Authors may only change
// their own. The caller holds the state lock.
func (s *Server) editable(r *http.Request, id string) (*domain.Article, error) {
	a, ok := s.state.articles[id]
	if !ok {
		return nil, apperrors.NotFound("article", id)
	}
	if domain.Role(middleware.RoleFromContext(r.Context())) == domain.RoleAuthor &&
		a.AuthorID != middleware.UserIDFromContext(r.Context()) {
		return nil, apperrors.Forbidden("You can only edit your own articles")
	}
	return a, nil
}

func (s *Server) updateArticle(w http.ResponseWriter, r *http.Request) {
	var in domain.ArticleInput
	if !s.decode(w, r, &in) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	a, err := s.editable(r, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	updated := *a
	if err := s.applyArticleInput(&updated, in); err != nil {
		s.fail(w, r, err)
		return
	}
	*a = updated
	httputil.WriteResource(w, http.StatusOK, "article", s.state.hydrate(a))
}

type statusBody struct {
	Status domain.ArticleStatus `json:"status" validate:"required,oneof=DRAFT PUBLISHED ARCHIVED"`
}

func (s *Server) setArticleStatus(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if !s.decode(w, r, &body) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	id := chi.URLParam(r, "id")
	a, ok := s.state.articles[id]
	if !ok {
		s.fail(w, r, apperrors.NotFound("article", id))
		return
	}
	s.setStatus(a, body.Status)
	httputil.WriteResource(w, http.StatusOK, "article", s.state.hydrate(a))
}

type featuredBody struct {
	IsFeatured *bool `json:"isFeatured" validate:"required"`
}

func (s *Server) setArticleFeatured(w http.ResponseWriter, r *http.Request) {
	var body featuredBody
	if !s.decode(w, r, &body) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	id := chi.URLParam(r, "id")
	a, ok := s.state.articles[id]
	if !ok {
		s.fail(w, r, apperrors.NotFound("article", id))
		return
	}
	a.IsFeatured = *body.IsFeatured
	a.UpdatedAt = s.now()
	httputil.WriteResource(w, http.StatusOK, "article", s.state.hydrate(a))
}

func (s *Server) deleteArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if _, ok := s.state.articles[id]; !ok {
		s.fail(w, r, apperrors.NotFound("article", id))
		return
	}
	delete(s.state.articles, id)
	httputil.WriteMessage(w, http.StatusOK, "Article deleted successfully")
}

func (s *Server) uploadFeaturedImage(w http.ResponseWriter, r *http.Request) {
	file, err := readUpload(w, r, "image", maxImageBytes, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	a, err := s.editable(r, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	url := fmt.Sprintf("/uploads/articles/%s%s", a.ID, strings.ToLower(filepath.Ext(file.name)))
	a.FeaturedImage = &url
	a.UpdatedAt = s.now()
	httputil.WriteResource(w, http.StatusOK, "article", s.state.hydrate(a))
}
