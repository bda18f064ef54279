package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/dgallion1/lawref/internal/catalog"
	"github.com/dgallion1/lawref/internal/library"
	"github.com/dgallion1/lawref/internal/parser"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.catalog.Categories(r.Context())
	if err != nil {
		s.writeError(w, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": nonNil(cats)})
}

func (s *Server) handleSubCategories(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryParam(w, r)
	if !ok {
		return
	}
	subs, err := s.catalog.SubCategories(r.Context(), id)
	if err != nil {
		s.writeError(w, "list sub-categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category":      id,
		"subcategories": nonNil(subs),
	})
}

// handleLaws lists a category's laws; ?all=true includes its sub-categories.
func (s *Server) handleLaws(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryParam(w, r)
	if !ok {
		return
	}

	var (
		laws []catalog.Law
		err  error
	)
	if r.URL.Query().Get("all") == "true" {
		laws, err = s.catalog.AllLaws(r.Context(), id)
	} else {
		laws, err = s.catalog.Laws(r.Context(), id)
	}
	if err != nil {
		s.writeError(w, "list laws", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": id,
		"laws":     nonNil(laws),
	})
}

// categoryParam decodes {categoryID}. Sub-category IDs contain a slash and
// arrive percent-encoded.
func categoryParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := url.PathUnescape(chi.URLParam(r, "categoryID"))
	if err != nil || id == "" {
		jsonError(w, "invalid category id", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, library.ErrTooLarge), errors.Is(err, parser.ErrLineTooLong):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, library.ErrQueueFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, parser.ErrSourceUnavailable):
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	code := statusFor(err)
	if code >= 500 {
		s.log.Error(op+" failed", "error", err)
	}
	jsonError(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
