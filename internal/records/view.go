package records

import "strings"

// View holds the per-page table state: the fetched records plus the current
// query, sort, page window and selection. All derived output is recomputed
// from inputs on every Apply; nothing is cached.
type View[T any] struct {
	schema   Schema[T]
	idKey    string
	records  []T
	query    Query
	sortKey  string
	sortDesc bool
	page     int
	pageSize int
	sel      *Selection
}

// Result is one computed render pass over the view.
type Result[T any] struct {
	Rows      []T    `json:"rows"`
	Total     int    `json:"total"`
	Filtered  int    `json:"filtered"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	PageCount int    `json:"page_count"`
	SortKey   string `json:"sort_key,omitempty"`
	SortDesc  bool   `json:"sort_desc"`
}

// NewView creates a view with the dominant "worst first" default: no sort
// key yet, descending direction, page 1.
func NewView[T any](schema Schema[T], idKey string, pageSize int) *View[T] {
	if pageSize < 1 {
		pageSize = 25
	}
	return &View[T]{
		schema:   schema,
		idKey:    idKey,
		sortDesc: true,
		page:     1,
		pageSize: pageSize,
		sel:      NewSelection(),
	}
}

// SetRecords replaces the record set after a refetch. The page resets to 1
// when the new filtered count leaves it out of range; selections of
// vanished ids drop.
func (v *View[T]) SetRecords(recs []T) {
	v.records = recs
	v.sel.Keep(v.idsOf(recs))
	if v.page > PageCount(len(v.filtered()), v.pageSize) {
		v.page = 1
	}
}

// SetQuery replaces all filter constraints and resets to page 1.
func (v *View[T]) SetQuery(q Query) {
	v.query = q
	v.page = 1
}

// SetSearch updates the text filter and resets to page 1.
func (v *View[T]) SetSearch(term string) {
	v.query.Search = term
	v.page = 1
}

// SetFilter sets one enum constraint and resets to page 1. An empty value
// clears the constraint.
func (v *View[T]) SetFilter(key, value string) {
	if v.query.Equals == nil {
		v.query.Equals = make(map[string]string)
	}
	if strings.TrimSpace(value) == "" {
		delete(v.query.Equals, key)
	} else {
		v.query.Equals[key] = value
	}
	v.page = 1
}

// SortBy selects the sort column. A new key resets direction to descending;
// repeating the current key flips direction.
func (v *View[T]) SortBy(key string) {
	if key == v.sortKey {
		v.sortDesc = !v.sortDesc
		return
	}
	v.sortKey = key
	v.sortDesc = true
}

// SetPageSize changes the window size and resets to page 1.
func (v *View[T]) SetPageSize(n int) {
	if n < 1 {
		return
	}
	v.pageSize = n
	v.page = 1
}

// SetPage moves the window; out-of-range pages are served as empty rather
// than rejected.
func (v *View[T]) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	v.page = n
}

// Selection exposes the row-selection state.
func (v *View[T]) Selection() *Selection {
	return v.sel
}

// SelectAllFiltered selects every record matching the current filters, not
// just the visible page.
func (v *View[T]) SelectAllFiltered() {
	v.sel.AddAll(v.idsOf(v.filtered()))
}

// SelectPage selects only the rows on the current page.
func (v *View[T]) SelectPage() {
	v.sel.AddAll(v.idsOf(v.Apply().Rows))
}

// AllFilteredSelected distinguishes "all filtered rows selected" from "all
// rows on this page selected".
func (v *View[T]) AllFilteredSelected() bool {
	return v.sel.ContainsAll(v.idsOf(v.filtered()))
}

// SelectedRecords returns the selected subset of the current filtered set in
// display order, the usual export payload.
func (v *View[T]) SelectedRecords() []T {
	filtered := v.sorted(v.filtered())
	if v.sel.Len() == 0 {
		return filtered
	}
	out := make([]T, 0, v.sel.Len())
	for _, rec := range filtered {
		if v.sel.Contains(v.recordID(rec)) {
			out = append(out, rec)
		}
	}
	return out
}

// Filtered returns the full filtered, sorted set without the page window.
func (v *View[T]) Filtered() []T {
	return v.sorted(v.filtered())
}

// Apply runs the filter, sort and paginate pipeline and returns the slice to
// render plus its metadata.
func (v *View[T]) Apply() Result[T] {
	filtered := v.sorted(v.filtered())
	pageCount := PageCount(len(filtered), v.pageSize)

	// A page past the end renders empty rather than erroring or clamping;
	// refetch and filter changes are the only events that move the page.
	return Result[T]{
		Rows:      Paginate(filtered, v.page, v.pageSize),
		Total:     len(v.records),
		Filtered:  len(filtered),
		Page:      v.page,
		PageSize:  v.pageSize,
		PageCount: pageCount,
		SortKey:   v.sortKey,
		SortDesc:  v.sortDesc,
	}
}

func (v *View[T]) filtered() []T {
	return Filter(v.schema, v.records, v.query)
}

func (v *View[T]) sorted(in []T) []T {
	if v.sortKey == "" {
		return in
	}
	return Sort(v.schema, in, v.sortKey, v.sortDesc)
}

func (v *View[T]) recordID(rec T) string {
	col, ok := v.schema.Column(v.idKey)
	if !ok {
		return ""
	}
	return col.Value(rec).Display()
}

func (v *View[T]) idsOf(recs []T) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		if id := v.recordID(rec); id != "" {
			out = append(out, id)
		}
	}
	return out
}
