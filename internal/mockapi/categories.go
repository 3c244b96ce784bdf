package mockapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
	"github.com/Gilberthb/Umunsi-sub002/pkg/httputil"
	"github.com/Gilberthb/Umunsi-sub002/pkg/pagination"
	"github.com/Gilberthb/Umunsi-sub002/pkg/slug"
)

var categoryOrder = map[string]func(a, b domain.Category) bool{
	"name":         func(a, b domain.Category) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
	"createdAt":    func(a, b domain.Category) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"articleCount": func(a, b domain.Category) bool { return a.ArticleCount < b.ArticleCount },
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	sortBy, desc, err := sortParams(r, "name", func(f string) bool { _, ok := categoryOrder[f]; return ok })
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// Names read naturally A to Z unless a direction is asked for.
	if r.URL.Query().Get("sortOrder") == "" {
		desc = sortBy != "name"
	}
	search := r.URL.Query().Get("search")

	s.state.mu.RLock()
	matched := make([]domain.Category, 0, len(s.state.categories))
	for _, c := range s.state.categories {
		if search != "" && !containsFold(c.Name, search) && !containsFold(c.Description, search) {
			continue
		}
		out := *c
		out.ArticleCount = s.state.articleCount(c.ID)
		matched = append(matched, out)
	}
	s.state.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	sortedBy(matched, desc, categoryOrder[sortBy])

	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(pagination.Slice(matched, params), len(matched), params))
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "id")

	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	c := s.state.categoryByRef(ref)
	if c == nil {
		s.fail(w, r, apperrors.NotFound("category", ref))
		return
	}
	out := *c
	out.ArticleCount = s.state.articleCount(c.ID)
	httputil.WriteResource(w, http.StatusOK, "category", out)
}

// applyCategoryInput copies in onto c. The caller holds the state lock.
func (s *Server) applyCategoryInput(c *domain.Category, in domain.CategoryInput) error {
	ref := in.Slug
	if ref == "" {
		ref = slug.Generate(in.Name)
	}
	if ref == "" {
		return apperrors.InvalidInput("Name must contain letters or digits")
	}
	if s.state.categorySlugTaken(ref, c.ID) {
		return apperrors.Conflict("A category with this slug already exists")
	}
	if in.ParentID != nil {
		if *in.ParentID == c.ID {
			return apperrors.InvalidInput("A category cannot be its own parent")
		}
		if _, ok := s.state.categories[*in.ParentID]; !ok {
			return apperrors.InvalidInput("Parent category not found")
		}
	}
	c.Name = in.Name
	c.Slug = ref
	c.Description = in.Description
	c.Color = in.Color
	c.ParentID = in.ParentID
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	return nil
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var in domain.CategoryInput
	if !s.decode(w, r, &in) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	c := &domain.Category{ID: newID(), IsActive: true, CreatedAt: s.now()}
	if err := s.applyCategoryInput(c, in); err != nil {
		s.fail(w, r, err)
		return
	}
	s.state.categories[c.ID] = c
	httputil.WriteResource(w, http.StatusCreated, "category", *c)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	var in domain.CategoryInput
	if !s.decode(w, r, &in) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	id := chi.URLParam(r, "id")
	c, ok := s.state.categories[id]
	if !ok {
		s.fail(w, r, apperrors.NotFound("category", id))
		return
	}
	updated := *c
	if err := s.applyCategoryInput(&updated, in); err != nil {
		s.fail(w, r, err)
		return
	}
	*c = updated
	out := *c
	out.ArticleCount = s.state.articleCount(c.ID)
	httputil.WriteResource(w, http.StatusOK, "category", out)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if _, ok := s.state.categories[id]; !ok {
		s.fail(w, r, apperrors.NotFound("category", id))
		return
	}
	if s.state.articleCount(id) > 0 {
		s.fail(w, r, apperrors.InvalidInput("Cannot delete category with articles"))
		return
	}
	delete(s.state.categories, id)
	httputil.WriteMessage(w, http.StatusOK, "Category deleted successfully")
}
