package records

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultSearchMinLength is the shortest search term that activates the
// text filter; anything shorter means "no text filter", not "match nothing".
const DefaultSearchMinLength = 2

// Query is the combined set of active constraints. Zero fields mean
// "unconstrained"; active predicates compose with logical AND.
type Query struct {
	Search          string
	SearchMinLength int

	// Equals maps a column key to a required value, compared
	// case-insensitively against the column's display value. Empty
	// values and unknown keys are ignored.
	Equals map[string]string

	// DateKey names the time column the range below applies to. Records
	// whose date is missing are excluded only while a bound is active.
	DateKey  string
	DateFrom *time.Time
	DateTo   *time.Time
}

func (q Query) searchTerm() string {
	term := strings.TrimSpace(q.Search)
	min := q.SearchMinLength
	if min <= 0 {
		min = DefaultSearchMinLength
	}
	if utf8.RuneCountInString(term) < min {
		return ""
	}
	return strings.ToLower(term)
}

// Active reports whether any predicate would constrain the result.
func (q Query) Active() bool {
	if q.searchTerm() != "" {
		return true
	}
	for _, v := range q.Equals {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return q.DateKey != "" && (q.DateFrom != nil || q.DateTo != nil)
}

// Filter returns the records matching every active predicate, preserving
// input order. Malformed records degrade per predicate; nothing throws.
func Filter[T any](s Schema[T], in []T, q Query) []T {
	if !q.Active() {
		out := make([]T, len(in))
		copy(out, in)
		return out
	}

	out := make([]T, 0, len(in))
	for _, rec := range in {
		if Matches(s, rec, q) {
			out = append(out, rec)
		}
	}
	return out
}

// Matches evaluates all active predicates against one record.
func Matches[T any](s Schema[T], rec T, q Query) bool {
	if term := q.searchTerm(); term != "" {
		if !searchHit(s, rec, term) {
			return false
		}
	}

	for key, want := range q.Equals {
		want = strings.TrimSpace(want)
		if want == "" || strings.EqualFold(want, "all") {
			continue
		}
		col, ok := s.Column(key)
		if !ok {
			continue
		}
		if !strings.EqualFold(col.Value(rec).Display(), want) {
			return false
		}
	}

	if q.DateKey != "" && (q.DateFrom != nil || q.DateTo != nil) {
		col, ok := s.Column(q.DateKey)
		if !ok {
			return true
		}
		v := col.Value(rec)
		if v.Kind() != KindTime {
			return false
		}
		ts := v.TimeValue()
		if q.DateFrom != nil && ts.Before(*q.DateFrom) {
			return false
		}
		if q.DateTo != nil && ts.After(*q.DateTo) {
			return false
		}
	}

	return true
}

func searchHit[T any](s Schema[T], rec T, lowerTerm string) bool {
	for _, col := range s.columns {
		if !col.Searchable {
			continue
		}
		if strings.Contains(strings.ToLower(col.Value(rec).Display()), lowerTerm) {
			return true
		}
	}
	return false
}
