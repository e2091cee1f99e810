package records

import (
	"testing"
	"time"
)

type person struct {
	ID    string
	Name  string
	Depot string
	Score *float64
	Seen  *time.Time
}

func score(f float64) *float64 { return &f }

func seen(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func personSchema() Schema[person] {
	return NewSchema(
		Column[person]{Key: "id", Title: "ID", Value: func(p person) Value { return String(p.ID) }},
		Column[person]{Key: "name", Title: "Name", Value: func(p person) Value { return String(p.Name) }, Searchable: true},
		Column[person]{Key: "depot", Title: "Depot", Value: func(p person) Value { return String(p.Depot) }, Searchable: true},
		Column[person]{Key: "score", Title: "Score", Value: func(p person) Value { return NumberPtr(p.Score) }},
		Column[person]{Key: "seen", Title: "Seen", Value: func(p person) Value { return TimePtr(p.Seen) }},
	)
}

func testPeople() []person {
	return []person{
		{ID: "1", Name: "Brian", Depot: "North", Score: score(82), Seen: seen("2026-03-01T08:00:00Z")},
		{ID: "2", Name: "Gabriel", Depot: "South", Score: score(64), Seen: seen("2026-03-03T08:00:00Z")},
		{ID: "3", Name: "Amy", Depot: "North", Score: nil, Seen: seen("2026-03-05T08:00:00Z")},
		{ID: "4", Name: "Priya", Depot: "West", Score: score(91), Seen: nil},
	}
}

func TestFilterSearchMatchesSubstring(t *testing.T) {
	s := personSchema()
	out := Filter(s, testPeople(), Query{Search: "bri"})

	if len(out) != 2 {
		t.Fatalf("expected 2 matches for %q, got %d", "bri", len(out))
	}
	if out[0].Name != "Brian" || out[1].Name != "Gabriel" {
		t.Fatalf("expected Brian and Gabriel in input order, got %q and %q", out[0].Name, out[1].Name)
	}
}

func TestFilterSearchBelowMinLengthIsInactive(t *testing.T) {
	s := personSchema()
	out := Filter(s, testPeople(), Query{Search: "b"})

	if len(out) != 4 {
		t.Fatalf("expected single-rune search to match everything, got %d rows", len(out))
	}
}

func TestFilterSearchIgnoresUnsearchableColumns(t *testing.T) {
	s := personSchema()
	// "82" appears only in the score column, which is not searchable.
	out := Filter(s, testPeople(), Query{Search: "82"})

	if len(out) != 0 {
		t.Fatalf("expected no matches via unsearchable column, got %d", len(out))
	}
}

func TestFilterEqualsComposeWithAND(t *testing.T) {
	s := personSchema()
	out := Filter(s, testPeople(), Query{
		Search: "a",
		Equals: map[string]string{"depot": "north"},
	})

	// Search "a" hits Brian, Gabriel, Amy and Priya; depot=north keeps
	// Brian and Amy.
	if len(out) != 2 {
		t.Fatalf("expected 2 rows after AND composition, got %d", len(out))
	}
	for _, p := range out {
		if p.Depot != "North" {
			t.Fatalf("row %q escaped the depot filter", p.Name)
		}
	}
}

func TestFilterEqualsAllIsIgnored(t *testing.T) {
	s := personSchema()
	out := Filter(s, testPeople(), Query{Equals: map[string]string{"depot": "All"}})

	if len(out) != 4 {
		t.Fatalf("expected catch-all depot value to be ignored, got %d rows", len(out))
	}
}

func TestFilterDateRangeExcludesMissingDates(t *testing.T) {
	s := personSchema()
	from := seen("2026-03-02T00:00:00Z")
	out := Filter(s, testPeople(), Query{DateKey: "seen", DateFrom: from})

	// Priya has no seen date and must drop while a bound is active.
	if len(out) != 2 {
		t.Fatalf("expected 2 rows inside the range, got %d", len(out))
	}
	for _, p := range out {
		if p.Seen == nil || p.Seen.Before(*from) {
			t.Fatalf("row %q violates the from bound", p.Name)
		}
	}
}

func TestFilterInactiveQueryCopiesInput(t *testing.T) {
	s := personSchema()
	in := testPeople()
	out := Filter(s, in, Query{})

	if len(out) != len(in) {
		t.Fatalf("expected all %d rows, got %d", len(in), len(out))
	}
	out[0].Name = "mutated"
	if in[0].Name == "mutated" {
		t.Fatal("filter output aliases the input slice")
	}
}
