package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestCSVQuotesEmbeddedCommasAndQuotes(t *testing.T) {
	var buf bytes.Buffer
	err := CSV(&buf, []string{"Name", "Depot"}, [][]string{
		{`Tank "A", North`, "North"},
		{"Plain", "South"},
	})
	if err != nil {
		t.Fatalf("csv write failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, `"Tank ""A"", North"`) {
		t.Fatalf("expected RFC 4180 quoting, got:\n%s", got)
	}
	if !strings.HasPrefix(got, "Name,Depot\n") {
		t.Fatalf("expected header row first, got:\n%s", got)
	}
}

func TestCSVIsDeterministic(t *testing.T) {
	headers := []string{"A", "B"}
	rows := [][]string{{"1", "2"}, {"3", "4"}}

	var first, second bytes.Buffer
	if err := CSV(&first, headers, rows); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := CSV(&second, headers, rows); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatal("identical input produced different csv output")
	}
}

func TestCSVPadsShortRows(t *testing.T) {
	var buf bytes.Buffer
	err := CSV(&buf, []string{"A", "B", "C"}, [][]string{{"only"}})
	if err != nil {
		t.Fatalf("csv write failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[1] != "only,," {
		t.Fatalf("expected padded row, got %q", lines[1])
	}
}

func TestJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	env := Envelope{
		GeneratedAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		Scope:       "north",
		Filters:     map[string]string{"status": "critical"},
		Count:       1,
		Data:        []map[string]any{{"tank_id": "T1"}},
	}
	if err := JSON(&buf, env); err != nil {
		t.Fatalf("json write failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if decoded["count"] != float64(1) {
		t.Fatalf("expected count 1, got %v", decoded["count"])
	}
	if decoded["scope"] != "north" {
		t.Fatalf("expected scope north, got %v", decoded["scope"])
	}
}

func TestFilename(t *testing.T) {
	ts := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	cases := []struct {
		base, scope, ext string
		want             string
	}{
		{"tanks", "north depot", "csv", "tanks_north_depot_2026-03-10.csv"},
		{"tanks", "all", "csv", "tanks_2026-03-10.csv"},
		{"drivers", "", "json", "drivers_2026-03-10.json"},
		{"deliveries", "acme/fuel", ".csv", "deliveries_acme_fuel_2026-03-10.csv"},
	}
	for _, c := range cases {
		if got := Filename(c.base, c.scope, ts, c.ext); got != c.want {
			t.Fatalf("Filename(%q, %q): want %q, got %q", c.base, c.scope, c.want, got)
		}
	}
}
