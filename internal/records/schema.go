package records

// Column describes one field of a record type: how to read it, how to title
// it in exports, and whether free-text search should look at it. Derived
// classifications are plain columns whose accessor computes the tier on the
// fly, so enum filters always see the freshly computed value.
type Column[T any] struct {
	Key        string
	Title      string
	Value      func(T) Value
	Searchable bool
}

// Schema is the ordered column list shared by filtering, sorting and export
// for one record type.
type Schema[T any] struct {
	columns []Column[T]
	byKey   map[string]int
}

func NewSchema[T any](columns ...Column[T]) Schema[T] {
	byKey := make(map[string]int, len(columns))
	for i, c := range columns {
		if c.Key == "" || c.Value == nil {
			continue
		}
		if _, dup := byKey[c.Key]; dup {
			continue
		}
		byKey[c.Key] = i
	}
	return Schema[T]{columns: columns, byKey: byKey}
}

// Columns returns the schema columns in declaration order.
func (s Schema[T]) Columns() []Column[T] {
	out := make([]Column[T], len(s.columns))
	copy(out, s.columns)
	return out
}

// Column looks a column up by key.
func (s Schema[T]) Column(key string) (Column[T], bool) {
	i, ok := s.byKey[key]
	if !ok {
		return Column[T]{}, false
	}
	return s.columns[i], true
}

// Keys returns all column keys in declaration order.
func (s Schema[T]) Keys() []string {
	out := make([]string, 0, len(s.columns))
	for _, c := range s.columns {
		out = append(out, c.Key)
	}
	return out
}

// Headers returns the export header row.
func (s Schema[T]) Headers() []string {
	out := make([]string, 0, len(s.columns))
	for _, c := range s.columns {
		title := c.Title
		if title == "" {
			title = c.Key
		}
		out = append(out, title)
	}
	return out
}

// Row renders one record into display cells in column order.
func (s Schema[T]) Row(rec T) []string {
	out := make([]string, 0, len(s.columns))
	for _, c := range s.columns {
		out = append(out, c.Value(rec).Display())
	}
	return out
}

// Table renders records into a header row plus display cells, ready for the
// export formatter.
func (s Schema[T]) Table(recs []T) ([]string, [][]string) {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, s.Row(rec))
	}
	return s.Headers(), rows
}
