package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/joestump/shelf/internal/catalog"
)

// writeError writes a JSON error response with the given HTTP status code.
func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a catalog error to its HTTP status. Unrecognized
// errors are logged and reported as an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var unresolved *catalog.UnresolvedError
	switch {
	case errors.As(err, &unresolved):
		writeError(w, http.StatusBadRequest, err.Error(), "UNRESOLVED_REFERENCE")
	case errors.Is(err, catalog.ErrInvalidID):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_ID")
	case errors.Is(err, catalog.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
	case errors.Is(err, catalog.ErrConflict):
		writeError(w, http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, catalog.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
	case errors.Is(err, catalog.ErrForbidden):
		writeError(w, http.StatusForbidden, "admin role required", "FORBIDDEN")
	default:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
	}
}
