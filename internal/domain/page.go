package domain

// PageSize is the fixed number of items per list page
const PageSize = 10

// Page is one clamped slice of a longer list
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	Total      int
}

// HasPrev reports whether a previous page exists
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// ClampPage fits page into [1, ceil(total/size)], or 1 when there is nothing
// to show, and returns the clamped page, the page count and the row offset.
func ClampPage(total, page, size int) (clamped, totalPages, offset int) {
	if size <= 0 {
		size = PageSize
	}
	totalPages = (total + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	switch {
	case page < 1:
		page = 1
	case page > totalPages:
		page = totalPages
	}
	return page, totalPages, (page - 1) * size
}

// Paginate cuts an in-memory slice into a clamped page
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = PageSize
	}
	page, totalPages, offset := ClampPage(len(items), page, size)
	end := offset + size
	if end > len(items) {
		end = len(items)
	}
	return Page[T]{
		Items:      items[offset:end],
		Number:     page,
		TotalPages: totalPages,
		Total:      len(items),
	}
}
