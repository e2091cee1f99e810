package records

import "testing"

func namesOf(in []person) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		out = append(out, p.Name)
	}
	return out
}

func TestSortNumericAscendingNullsLast(t *testing.T) {
	s := personSchema()
	out := Sort(s, testPeople(), "score", false)

	want := []string{"Gabriel", "Brian", "Priya", "Amy"}
	got := namesOf(out)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ascending order mismatch at %d: want %v, got %v", i, want, got)
		}
	}
}

func TestSortNumericDescendingNullsStillLast(t *testing.T) {
	s := personSchema()
	out := Sort(s, testPeople(), "score", true)

	got := namesOf(out)
	if got[0] != "Priya" {
		t.Fatalf("expected highest score first, got %q", got[0])
	}
	if got[len(got)-1] != "Amy" {
		t.Fatalf("expected null score last even descending, got %q", got[len(got)-1])
	}
}

func TestSortTimeNullsLast(t *testing.T) {
	s := personSchema()
	out := Sort(s, testPeople(), "seen", true)

	got := namesOf(out)
	if got[0] != "Amy" {
		t.Fatalf("expected most recent seen first, got %q", got[0])
	}
	if got[len(got)-1] != "Priya" {
		t.Fatalf("expected missing seen last, got %q", got[len(got)-1])
	}
}

func TestSortUnknownKeyPreservesOrder(t *testing.T) {
	s := personSchema()
	in := testPeople()
	out := Sort(s, in, "nonexistent", false)

	for i := range in {
		if out[i].ID != in[i].ID {
			t.Fatalf("expected input order preserved, got %v", namesOf(out))
		}
	}
}

func TestSortIsStableOnTies(t *testing.T) {
	s := personSchema()
	in := []person{
		{ID: "1", Name: "First", Depot: "X", Score: score(50)},
		{ID: "2", Name: "Second", Depot: "X", Score: score(50)},
		{ID: "3", Name: "Third", Depot: "X", Score: score(50)},
	}
	out := Sort(s, in, "score", false)

	for i, want := range []string{"1", "2", "3"} {
		if out[i].ID != want {
			t.Fatalf("tie order not stable: got %v", namesOf(out))
		}
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	s := personSchema()
	in := testPeople()
	firstBefore := in[0].ID
	_ = Sort(s, in, "score", true)

	if in[0].ID != firstBefore {
		t.Fatal("sort mutated its input slice")
	}
}
