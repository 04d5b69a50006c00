package catalog

import "strconv"

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Page selects a window of an ordered result: items
// [Page*PerPage, Page*PerPage+PerPage).
type Page struct {
	Page    int
	PerPage int
}

// DefaultPage is the first page at the default size.
var DefaultPage = Page{Page: 0, PerPage: DefaultPerPage}

// ParsePage reads page and perPage query values. Absent or non-numeric
// values fall back to 0 and DefaultPerPage; negatives clamp to 0 and
// perPage is capped at MaxPerPage.
func ParsePage(page, perPage string) Page {
	p := DefaultPage
	if n, err := strconv.Atoi(page); err == nil {
		p.Page = n
	}
	if n, err := strconv.Atoi(perPage); err == nil {
		p.PerPage = n
	}
	return p.clamp()
}

func (p Page) clamp() Page {
	p.Page = max(p.Page, 0)
	p.PerPage = min(max(p.PerPage, 0), MaxPerPage)
	return p
}

// Paginate returns the window p of items, which must already be in their
// final order. A window past the end is empty, never nil.
func Paginate[T any](items []T, p Page) []T {
	p = p.clamp()
	// perPage >= 1 implies offset >= page, so this also guards the multiply.
	if p.PerPage == 0 || p.Page >= len(items) {
		return []T{}
	}
	offset := p.Page * p.PerPage
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+p.PerPage, len(items))
	return items[offset:end:end]
}
