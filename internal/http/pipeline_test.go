package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-fleet-ops-dashboard/internal/records"
)

func TestParseTableParamsDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tanks", nil)
	p := parseTableParams(req, testConfig(), "percent_full", "status")

	if p.SortKey != "percent_full" {
		t.Fatalf("expected default sort key, got %q", p.SortKey)
	}
	if !p.SortDesc {
		t.Fatal("expected descending sort by default")
	}
	if p.Page != 1 || p.PageSize != 25 {
		t.Fatalf("expected page 1 size 25, got %d/%d", p.Page, p.PageSize)
	}
	if len(p.Equals) != 0 {
		t.Fatalf("expected no enum filters, got %v", p.Equals)
	}
}

func TestParseTableParamsReadsControls(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/tanks?search=diesel&fleet=north&status=critical&sort=name&dir=asc&page=3&page_size=50", nil)
	p := parseTableParams(req, testConfig(), "percent_full", "status")

	if p.Search != "diesel" || p.Fleet != "north" {
		t.Fatalf("unexpected search/fleet: %q/%q", p.Search, p.Fleet)
	}
	if p.Equals["status"] != "critical" {
		t.Fatalf("expected status filter, got %v", p.Equals)
	}
	if p.SortKey != "name" || p.SortDesc {
		t.Fatalf("expected ascending name sort, got %q desc=%v", p.SortKey, p.SortDesc)
	}
	if p.Page != 3 || p.PageSize != 50 {
		t.Fatalf("expected page 3 size 50, got %d/%d", p.Page, p.PageSize)
	}
}

func TestParseTableParamsClampsPageSize(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tanks?page_size=100000", nil)
	p := parseTableParams(req, testConfig(), "percent_full")

	if p.PageSize != 500 {
		t.Fatalf("expected page size clamped to 500, got %d", p.PageSize)
	}
}

func TestParseTableParamsInclusiveToDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/deliveries?from=2026-03-01&to=2026-03-02", nil)
	p := parseTableParams(req, testConfig(), "delivered_at")

	if p.DateFrom == nil || p.DateTo == nil {
		t.Fatal("expected both date bounds parsed")
	}
	wantFrom := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !p.DateFrom.Equal(wantFrom) {
		t.Fatalf("from bound: want %v, got %v", wantFrom, p.DateFrom)
	}
	// A record late on the "to" day must still fall inside the bound.
	lastMoment := time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC)
	if p.DateTo.Before(lastMoment) {
		t.Fatalf("to bound %v excludes end of day", p.DateTo)
	}
	if !p.DateTo.Before(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("to bound %v leaks into the next day", p.DateTo)
	}
}

func TestRunTableOutOfRangePage(t *testing.T) {
	s := exportSchema()
	recs := []exportRow{{ID: "1", Name: "Alpha"}, {ID: "2", Name: "Beta"}}
	res := runTable(s, recs, records.Query{}, "name", false, 9, 25)

	if len(res.Rows) != 0 {
		t.Fatalf("expected empty page past the end, got %d rows", len(res.Rows))
	}
	if len(res.Filtered) != 2 || res.PageCount != 1 {
		t.Fatalf("expected filtered metadata intact, got %d/%d", len(res.Filtered), res.PageCount)
	}
}
