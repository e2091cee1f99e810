package records

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort orders records by one column. Strings compare with locale-aware
// collation, numbers and dates numerically. Null values sort after every
// non-null value in both directions. An unknown or empty key returns the
// input order unchanged. The sort is stable and the input is not mutated.
func Sort[T any](s Schema[T], in []T, key string, desc bool) []T {
	out := make([]T, len(in))
	copy(out, in)

	col, ok := s.Column(key)
	if !ok {
		return out
	}

	values := make([]Value, len(out))
	for i, rec := range out {
		values[i] = col.Value(rec)
	}

	coll := collate.New(language.English, collate.Loose)
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := values[idx[a]], values[idx[b]]
		// Nulls last regardless of direction.
		if va.IsNull() || vb.IsNull() {
			return !va.IsNull() && vb.IsNull()
		}
		c := compareValues(coll, va, vb)
		if desc {
			return c > 0
		}
		return c < 0
	})

	sorted := make([]T, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

func compareValues(coll *collate.Collator, a, b Value) int {
	if a.Kind() == KindString && b.Kind() == KindString {
		return coll.CompareString(a.Display(), b.Display())
	}
	if numericKind(a.Kind()) && numericKind(b.Kind()) {
		switch {
		case a.Num() < b.Num():
			return -1
		case a.Num() > b.Num():
			return 1
		default:
			return 0
		}
	}
	// Mixed kinds fall back to display-text collation.
	return coll.CompareString(a.Display(), b.Display())
}

func numericKind(k Kind) bool {
	return k == KindNumber || k == KindTime
}
