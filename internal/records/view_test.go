package records

import (
	"fmt"
	"testing"
)

func manyPeople(n int) []person {
	out := make([]person, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, person{
			ID:    fmt.Sprintf("%03d", i),
			Name:  fmt.Sprintf("Driver %03d", i),
			Depot: "North",
			Score: score(float64(i)),
		})
	}
	return out
}

func TestViewApplyPipeline(t *testing.T) {
	v := NewView(personSchema(), "id", 25)
	v.SetRecords(manyPeople(57))
	v.SortBy("score")
	v.SortBy("score") // flip to ascending

	res := v.Apply()
	if res.Total != 57 || res.Filtered != 57 {
		t.Fatalf("expected 57/57 rows, got %d/%d", res.Total, res.Filtered)
	}
	if res.PageCount != 3 {
		t.Fatalf("expected 3 pages, got %d", res.PageCount)
	}
	if len(res.Rows) != 25 {
		t.Fatalf("expected first page of 25, got %d", len(res.Rows))
	}
	if res.Rows[0].ID != "000" {
		t.Fatalf("expected ascending sort to lead with 000, got %q", res.Rows[0].ID)
	}
}

func TestViewOutOfRangePageServesEmpty(t *testing.T) {
	v := NewView(personSchema(), "id", 25)
	v.SetRecords(manyPeople(57))
	v.SetPage(4)

	res := v.Apply()
	if len(res.Rows) != 0 {
		t.Fatalf("expected empty page past the end, got %d rows", len(res.Rows))
	}
	if res.Page != 4 {
		t.Fatalf("expected page left at 4, got %d", res.Page)
	}
}

func TestViewRefetchResetsOutOfRangePage(t *testing.T) {
	v := NewView(personSchema(), "id", 25)
	v.SetRecords(manyPeople(57))
	v.SetPage(3)

	// Refetch returns a smaller set; page 3 no longer exists.
	v.SetRecords(manyPeople(10))
	res := v.Apply()
	if res.Page != 1 {
		t.Fatalf("expected page reset to 1 after shrink, got %d", res.Page)
	}
	if len(res.Rows) != 10 {
		t.Fatalf("expected all 10 rows on page 1, got %d", len(res.Rows))
	}
}

func TestViewFilterChangeResetsPage(t *testing.T) {
	v := NewView(personSchema(), "id", 25)
	v.SetRecords(manyPeople(57))
	v.SetPage(3)
	v.SetSearch("Driver 00")

	res := v.Apply()
	if res.Page != 1 {
		t.Fatalf("expected filter change to reset page, got %d", res.Page)
	}
	if res.Filtered != 10 {
		t.Fatalf("expected 10 filtered rows, got %d", res.Filtered)
	}
}

func TestViewSelectAllFilteredCoversFilteredSet(t *testing.T) {
	v := NewView(personSchema(), "id", 5)
	v.SetRecords(manyPeople(12))
	v.SetSearch("Driver 00") // ten rows: 000..009
	v.SelectAllFiltered()

	if got := v.Selection().Len(); got != 10 {
		t.Fatalf("expected all 10 filtered rows selected, got %d", got)
	}
	if !v.AllFilteredSelected() {
		t.Fatal("expected AllFilteredSelected to report true")
	}

	v.Selection().Clear()
	v.SelectPage()
	if got := v.Selection().Len(); got != 5 {
		t.Fatalf("expected only the visible page selected, got %d", got)
	}
	if v.AllFilteredSelected() {
		t.Fatal("page selection must not count as all-filtered")
	}
}

func TestViewSelectionSurvivesRefetchForRemainingIDs(t *testing.T) {
	v := NewView(personSchema(), "id", 25)
	v.SetRecords(manyPeople(12))
	v.Selection().Add("003")
	v.Selection().Add("011")

	v.SetRecords(manyPeople(10)) // 011 vanished
	if v.Selection().Contains("011") {
		t.Fatal("expected vanished id dropped from selection")
	}
	if !v.Selection().Contains("003") {
		t.Fatal("expected surviving id kept in selection")
	}
}

func TestViewSelectedRecordsDefaultsToFiltered(t *testing.T) {
	v := NewView(personSchema(), "id", 25)
	v.SetRecords(manyPeople(12))
	v.SetSearch("Driver 00")

	// No explicit selection: export covers the filtered set.
	if got := len(v.SelectedRecords()); got != 10 {
		t.Fatalf("expected filtered set of 10, got %d", got)
	}

	v.Selection().Add("004")
	recs := v.SelectedRecords()
	if len(recs) != 1 || recs[0].ID != "004" {
		t.Fatalf("expected only selected row 004, got %d rows", len(recs))
	}
}

func TestSelectionToggleAndIDs(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("b")
	sel.Toggle("a")
	sel.Toggle("b")

	ids := sel.IDs()
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("expected single id a after double toggle, got %v", ids)
	}
	if sel.ContainsAll(nil) {
		t.Fatal("empty id set must not report fully selected")
	}
}
