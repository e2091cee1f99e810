package gauges

import (
	"strings"
	"testing"
	"time"
)

const sampleExposition = `# HELP tank_level_percent Current tank fill percent.
# TYPE tank_level_percent gauge
tank_level_percent{tank="T-001",depot="north"} 42.5
tank_level_percent{tank="T-002"} 11
tank_temperature_celsius{tank="T-001"} 18.2
go_goroutines 12
malformed_line
not_a_number{tank="T-003"} abc
`

func TestParseGaugeSeriesFoldsTankLabel(t *testing.T) {
	agg, samples, err := parseGaugeSeries(strings.NewReader(sampleExposition), "tank_")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if samples != 3 {
		t.Fatalf("expected 3 matching samples, got %d", samples)
	}
	if got := agg["tank_level_percent:T-001"]; got != 42.5 {
		t.Fatalf("expected 42.5 for T-001, got %v", got)
	}
	if got := agg["tank_level_percent:T-002"]; got != 11 {
		t.Fatalf("expected 11 for T-002, got %v", got)
	}
	if _, ok := agg["go_goroutines"]; ok {
		t.Fatal("prefix filter leaked a non-tank metric")
	}
}

func TestParseGaugeSeriesWithoutPrefixKeepsAll(t *testing.T) {
	agg, _, err := parseGaugeSeries(strings.NewReader(sampleExposition), "")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := agg["go_goroutines"]; got != 12 {
		t.Fatalf("expected bare metric kept, got %v", got)
	}
}

func TestParseLine(t *testing.T) {
	cases := []struct {
		line  string
		name  string
		tank  string
		value float64
		ok    bool
	}{
		{`tank_level_percent{tank="T-001"} 42.5`, "tank_level_percent", "T-001", 42.5, true},
		{`tank_level_percent{depot="x",tank="T-9"} 7`, "tank_level_percent", "T-9", 7, true},
		{"go_goroutines 12", "go_goroutines", "", 12, true},
		{"go_goroutines", "", "", 0, false},
		{`tank_level_percent{tank="T-1"} notanumber`, "", "", 0, false},
	}
	for _, c := range cases {
		name, tank, value, ok := parseLine(c.line)
		if ok != c.ok {
			t.Fatalf("parseLine(%q) ok: want %v, got %v", c.line, c.ok, ok)
		}
		if !ok {
			continue
		}
		if name != c.name || tank != c.tank || value != c.value {
			t.Fatalf("parseLine(%q): got %q/%q/%v", c.line, name, tank, value)
		}
	}
}

func TestSeriesBoundedHistory(t *testing.T) {
	s := NewScraper([]string{"http://gauges.local/metrics"}, 0, 3)
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.record("http://gauges.local/metrics", base.Add(time.Duration(i)*time.Minute),
			map[string]float64{"tank_level_percent:T-1": float64(i)})
	}

	points := s.Series("http://gauges.local/metrics", "tank_level_percent:T-1", time.Time{})
	if len(points) != 3 {
		t.Fatalf("expected history capped at 3 points, got %d", len(points))
	}
	if points[0].Value != 2 || points[2].Value != 4 {
		t.Fatalf("expected oldest points evicted, got %v..%v", points[0].Value, points[2].Value)
	}
}
