package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/shelf/internal/auth"
	"github.com/joestump/shelf/internal/catalog"
)

// booksAPIHandler provides REST handlers for books.
type booksAPIHandler struct {
	catalog *catalog.Service
	log     *zap.Logger
}

// registerBookRoutes registers book routes on r.
func registerBookRoutes(r chi.Router, svc *catalog.Service, log *zap.Logger) {
	h := &booksAPIHandler{catalog: svc, log: log}
	r.Get("/books", h.List)
	r.Post("/books", h.Create)
	r.Get("/books/{id}", h.Get)
	r.Put("/books/{id}", h.Update)
}

// List returns a page of books ordered by title, optionally narrowed by a
// free-text search over the book and its author's name.
// GET /books?search=&page=&perPage=
func (h *booksAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.ListBooks(r.Context(), r.URL.Query().Get("search"), parsePagination(r))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookResponses(books))
}

// Get returns one book with its author.
// GET /books/{id}
func (h *booksAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.catalog.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookResponse(*b))
}

// Create adds a book for an existing author (authorId) or a new one
// (author). Admin only.
// POST /books
func (h *booksAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	b, err := h.catalog.CreateBook(r.Context(), auth.CallerFromContext(r.Context()), req.toInput())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookResponse(*b))
}

// Update changes the given fields of a book. Admin only.
// PUT /books/{id}
func (h *booksAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	b, err := h.catalog.UpdateBook(r.Context(), auth.CallerFromContext(r.Context()), chi.URLParam(r, "id"), req.toUpdate())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookResponse(*b))
}
