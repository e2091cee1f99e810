package records

import "testing"

func TestPaginateWindows(t *testing.T) {
	in := make([]int, 57)
	for i := range in {
		in[i] = i
	}

	sizes := []int{}
	var flattened []int
	for page := 1; page <= PageCount(len(in), 25); page++ {
		rows := Paginate(in, page, 25)
		sizes = append(sizes, len(rows))
		flattened = append(flattened, rows...)
	}

	want := []int{25, 25, 7}
	if len(sizes) != len(want) {
		t.Fatalf("expected %d pages, got %d", len(want), len(sizes))
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("page %d size: want %d, got %d", i+1, want[i], sizes[i])
		}
	}
	if len(flattened) != len(in) {
		t.Fatalf("concatenated pages lost rows: want %d, got %d", len(in), len(flattened))
	}
	for i := range in {
		if flattened[i] != in[i] {
			t.Fatalf("concatenated pages reordered rows at %d", i)
		}
	}
}

func TestPaginatePastEndIsEmpty(t *testing.T) {
	in := []int{1, 2, 3}
	out := Paginate(in, 4, 25)
	if len(out) != 0 {
		t.Fatalf("expected empty page past the end, got %d rows", len(out))
	}
}

func TestPaginateRejectsBadWindow(t *testing.T) {
	in := []int{1, 2, 3}
	if got := Paginate(in, 0, 25); len(got) != 0 {
		t.Fatalf("page 0 should be empty, got %d rows", len(got))
	}
	if got := Paginate(in, 1, 0); len(got) != 0 {
		t.Fatalf("page size 0 should be empty, got %d rows", len(got))
	}
}

func TestPageCount(t *testing.T) {
	cases := []struct {
		total, size, want int
	}{
		{0, 25, 0},
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{57, 25, 3},
		{10, 0, 0},
	}
	for _, c := range cases {
		if got := PageCount(c.total, c.size); got != c.want {
			t.Fatalf("PageCount(%d, %d): want %d, got %d", c.total, c.size, c.want, got)
		}
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, pages, want int
	}{
		{0, 3, 1},
		{2, 3, 2},
		{9, 3, 3},
		{9, 0, 9},
	}
	for _, c := range cases {
		if got := ClampPage(c.page, c.pages); got != c.want {
			t.Fatalf("ClampPage(%d, %d): want %d, got %d", c.page, c.pages, c.want, got)
		}
	}
}
