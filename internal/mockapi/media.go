package mockapi

import (
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

const maxMediaBytes = 50 << 20

var mediaOrder = map[string]func(a, b domain.Media) bool{
	"createdAt":    func(a, b domain.Media) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"size":         func(a, b domain.Media) bool { return a.Size < b.Size },
	"originalName": func(a, b domain.Media) bool { return a.OriginalName < b.OriginalName },
}

func (s *Server) listMedia(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	sortBy, desc, err := sortParams(r, "createdAt", func(f string) bool { _, ok := mediaOrder[f]; return ok })
	if err != nil {
		s.fail(w, r, err)
		return
	}
	search, kind := r.URL.Query().Get("search"), r.URL.Query().Get("type")

	s.state.mu.RLock()
	matched := make([]domain.Media, 0, len(s.state.media))
	for _, m := range s.state.media {
		switch {
		case kind != "" && !strings.HasPrefix(m.MimeType, kind+"/"),
			search != "" && !containsFold(m.OriginalName, search) && !containsFold(m.Alt, search):
			continue
		}
		matched = append(matched, *m)
	}
	s.state.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	sortedBy(matched, desc, mediaOrder[sortBy])

	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(pagination.Slice(matched, params), len(matched), params))
}

func (s *Server) uploadMedia(w http.ResponseWriter, r *http.Request) {
	file, err := readUpload(w, r, "file", maxMediaBytes, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	id := newID()
	stored := id + strings.ToLower(filepath.Ext(file.name))
	m := &domain.Media{
		ID:           id,
		Filename:     stored,
		OriginalName: file.name,
		MimeType:     file.contentType,
		Size:         file.size,
		URL:          "/uploads/" + stored,
		Alt:          r.FormValue("alt"),
		UploadedBy:   middleware.UserIDFromContext(r.Context()),
		CreatedAt:    s.now(),
	}

	s.state.mu.Lock()
	s.state.media[id] = m
	s.state.mu.Unlock()

	httputil.WriteResource(w, http.StatusCreated, "media", *m)
}

func (s *Server) deleteMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if _, ok := s.state.media[id]; !ok {
		s.fail(w, r, apperrors.NotFound("media", id))
		return
	}
	delete(s.state.media, id)
	httputil.WriteMessage(w, http.StatusOK, "Media deleted successfully")
}
