package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/shelf/internal/auth"
	"github.com/joestump/shelf/internal/catalog"
)

// favoritesAPIHandler provides REST handlers for favorites. Every handler
// is scoped to the caller: non-admins only ever see their own favorites.
type favoritesAPIHandler struct {
	catalog *catalog.Service
	log     *zap.Logger
}

// registerFavoriteRoutes registers favorite routes on r.
func registerFavoriteRoutes(r chi.Router, svc *catalog.Service, log *zap.Logger) {
	h := &favoritesAPIHandler{catalog: svc, log: log}
	r.Get("/favorites", h.List)
	r.Post("/favorites", h.Create)
	r.Get("/favorites/{id}", h.Get)
	r.Put("/favorites/{id}", h.Update)
	r.Delete("/favorites/{id}", h.Delete)
}

// List returns a page of the caller's favorites, or everyone's for admins.
// GET /favorites?page=&perPage=
func (h *favoritesAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	favs, err := h.catalog.ListFavorites(r.Context(), auth.CallerFromContext(r.Context()), parsePagination(r))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toFavoriteResponses(favs))
}

// Get returns one favorite.
// GET /favorites/{id}
func (h *favoritesAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.catalog.GetFavorite(r.Context(), auth.CallerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toFavoriteResponse(*f))
}

// Create stores a favorite for the caller. The body is a JSON array of book ids.
// POST /favorites
func (h *favoritesAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	ids, ok := decodeBookIDs(w, r)
	if !ok {
		return
	}
	f, err := h.catalog.CreateFavorite(r.Context(), auth.CallerFromContext(r.Context()), ids)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFavoriteResponse(*f))
}

// Update replaces the books of a favorite. The body is a JSON array of book ids.
// PUT /favorites/{id}
func (h *favoritesAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	ids, ok := decodeBookIDs(w, r)
	if !ok {
		return
	}
	f, err := h.catalog.UpdateFavorite(r.Context(), auth.CallerFromContext(r.Context()), chi.URLParam(r, "id"), ids)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toFavoriteResponse(*f))
}

// Delete removes a favorite.
// DELETE /favorites/{id}
func (h *favoritesAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteFavorite(r.Context(), auth.CallerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBookIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON array of book ids", "BAD_REQUEST")
		return nil, false
	}
	return ids, true
}
