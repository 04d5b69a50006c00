package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/shelf/internal/auth"
	"github.com/joestump/shelf/internal/catalog"
)

// authorsAPIHandler provides REST handlers for authors.
type authorsAPIHandler struct {
	catalog *catalog.Service
	log     *zap.Logger
}

// registerAuthorRoutes registers author routes on r.
func registerAuthorRoutes(r chi.Router, svc *catalog.Service, log *zap.Logger) {
	h := &authorsAPIHandler{catalog: svc, log: log}
	r.Get("/authors", h.List)
	r.Post("/authors", h.Create)
	r.Get("/authors/{id}", h.Get)
	r.Put("/authors/{id}", h.Update)
}

// List returns a page of authors, either by free-text search or by the
// authorName/dateOfBirth filters.
// GET /authors?search=|authorName=&dateOfBirth=&page=&perPage=
func (h *authorsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	authors, err := h.catalog.ListAuthors(r.Context(), catalog.AuthorQuery{
		Search:      q.Get("search"),
		Name:        q.Get("authorName"),
		DateOfBirth: q.Get("dateOfBirth"),
	}, parsePagination(r))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthorResponses(authors))
}

// Get returns one author.
// GET /authors/{id}
func (h *authorsAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.catalog.GetAuthor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthorResponse(a))
}

// Create adds an author. Admin only.
// POST /authors
func (h *authorsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	a, err := h.catalog.CreateAuthor(r.Context(), auth.CallerFromContext(r.Context()), req.toAuthor())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuthorResponse(a))
}

// Update changes the given fields of an author. Admin only.
// PUT /authors/{id}
func (h *authorsAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateAuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	a, err := h.catalog.UpdateAuthor(r.Context(), auth.CallerFromContext(r.Context()), chi.URLParam(r, "id"), req.toPatch())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthorResponse(a))
}
