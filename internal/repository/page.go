package repository

// DefaultPerPage matches the five-item pages of the home feed and the
// review listings.
const DefaultPerPage = 5

// Page is one slice of a newest-first listing.
type Page[T any] struct {
	Items   []T `json:"items"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

func newPage[T any](items []T, page, perPage, total int) Page[T] {
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return Page[T]{Items: items, Page: page, PerPage: perPage, Total: total, Pages: pages}
}

// pageBounds clamps page/perPage and returns the SQL offset.
func pageBounds(page, perPage int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 50 {
		perPage = DefaultPerPage
	}
	return page, perPage, (page - 1) * perPage
}
