package api

import (
	"net/http"

	"github.com/joestump/shelf/internal/catalog"
)

// parsePagination reads page and perPage from the query string.
// Missing or non-numeric values fall back to page 0 and 10 per page.
func parsePagination(r *http.Request) catalog.Page {
	q := r.URL.Query()
	return catalog.ParsePage(q.Get("page"), q.Get("perPage"))
}
