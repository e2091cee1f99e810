package records

// PageCount reports how many pages a result set occupies. An empty set has
// zero pages.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize < 1 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage folds a page number back into range after the underlying set
// shrank. Page numbers start at 1; an empty set clamps to 1.
func ClampPage(page, pageCount int) int {
	if page < 1 {
		return 1
	}
	if pageCount >= 1 && page > pageCount {
		return pageCount
	}
	return page
}

// Paginate slices the window [(page-1)*pageSize, page*pageSize). A page past
// the end yields an empty slice, never an error, and concatenating all pages
// reconstructs the input exactly.
func Paginate[T any](in []T, page, pageSize int) []T {
	if pageSize < 1 || page < 1 {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(in) {
		return []T{}
	}
	end := start + pageSize
	if end > len(in) {
		end = len(in)
	}
	out := make([]T, end-start)
	copy(out, in[start:end])
	return out
}
