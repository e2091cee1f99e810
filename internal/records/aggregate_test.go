package records

import "testing"

func TestMeanOfEmptyIsZero(t *testing.T) {
	got := Mean(nil, func(p person) float64 { return 1 })
	if got != 0 {
		t.Fatalf("expected 0 for empty mean, got %v", got)
	}
}

func TestSumTreatsMissingAsZero(t *testing.T) {
	metric := func(p person) float64 {
		if p.Score == nil {
			return 0
		}
		return *p.Score
	}
	got := Sum(testPeople(), metric)
	if got != 82+64+91 {
		t.Fatalf("expected sum 237, got %v", got)
	}
}

func TestGroupCounts(t *testing.T) {
	got := GroupCounts(testPeople(), func(p person) string { return p.Depot })
	if got["North"] != 2 || got["South"] != 1 || got["West"] != 1 {
		t.Fatalf("unexpected group counts: %v", got)
	}
}

func TestSummarize(t *testing.T) {
	s := personSchema()
	sum := Summarize(s, testPeople(), []string{"score"}, "depot")

	if sum.Count != 4 {
		t.Fatalf("expected count 4, got %d", sum.Count)
	}
	if sum.Sums["score"] != 237 {
		t.Fatalf("expected score sum 237 with null counted as 0, got %v", sum.Sums["score"])
	}
	if sum.Means["score"] != 237.0/4.0 {
		t.Fatalf("expected mean over all rows, got %v", sum.Means["score"])
	}
	if sum.Groups["North"]["score"] != 82 {
		t.Fatalf("expected North group total 82, got %v", sum.Groups["North"]["score"])
	}
	if sum.GroupCounts["North"] != 2 {
		t.Fatalf("expected 2 rows in North, got %d", sum.GroupCounts["North"])
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	s := personSchema()
	sum := Summarize(s, nil, []string{"score"}, "depot")

	if sum.Count != 0 {
		t.Fatalf("expected count 0, got %d", sum.Count)
	}
	if sum.Means["score"] != 0 {
		t.Fatalf("expected mean 0 for empty input, got %v", sum.Means["score"])
	}
}
