package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-fleet-ops-dashboard/internal/auth"
	"go-fleet-ops-dashboard/internal/records"
)

type exportRow struct {
	ID   string
	Name string
}

func exportSchema() records.Schema[exportRow] {
	return records.NewSchema(
		records.Column[exportRow]{Key: "id", Title: "ID", Value: func(r exportRow) records.Value { return records.String(r.ID) }},
		records.Column[exportRow]{Key: "name", Title: "Name", Value: func(r exportRow) records.Value { return records.String(r.Name) }},
	)
}

func exportResult() tableResult[exportRow] {
	filtered := []exportRow{{ID: "1", Name: "Alpha"}, {ID: "2", Name: "Beta"}, {ID: "3", Name: "Gamma"}}
	return tableResult[exportRow]{
		Rows:      filtered[:2],
		Filtered:  filtered,
		Total:     5,
		Page:      1,
		PageSize:  2,
		PageCount: 2,
	}
}

func TestServeExport_DeniedWithoutCapability(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tanks/export.csv", nil)
	rr := httptest.NewRecorder()

	serveExport(rr, req, exportSchema(), exportResult(), auth.NewPermissions(), "tanks", tableParams{}, records.Summary{})

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if msg, _ := payload["error"].(string); !strings.Contains(msg, "APP_ALLOW_EXPORT") {
		t.Fatalf("expected capability hint, got %q", msg)
	}
}

func TestServeExport_CSVCoversFilteredSet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tanks/export.csv", nil)
	rr := httptest.NewRecorder()

	serveExport(rr, req, exportSchema(), exportResult(), auth.NewPermissions(auth.CapExport), "tanks", tableParams{}, records.Summary{})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected csv content type, got %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "tanks_") || !strings.Contains(cd, ".csv") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	// Header plus the full filtered set, not just the visible page.
	if len(lines) != 4 {
		t.Fatalf("expected 4 csv lines, got %d:\n%s", len(lines), rr.Body.String())
	}
	if lines[0] != "ID,Name" {
		t.Fatalf("unexpected header row %q", lines[0])
	}
}

func TestServeExport_PageScopeLimitsRows(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tanks/export.csv?scope=page", nil)
	rr := httptest.NewRecorder()

	serveExport(rr, req, exportSchema(), exportResult(), auth.NewPermissions(auth.CapExport), "tanks", tableParams{}, records.Summary{})

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 page rows, got %d lines", len(lines))
	}
}

func TestServeExport_JSONEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tanks/export.csv?format=json", nil)
	rr := httptest.NewRecorder()

	p := tableParams{Search: "alp", Fleet: "north"}
	serveExport(rr, req, exportSchema(), exportResult(), auth.NewPermissions(auth.CapExport), "tanks", p, records.Summary{Count: 3})

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}

	var payload struct {
		Scope   string            `json:"scope"`
		Filters map[string]string `json:"filters"`
		Count   int               `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if payload.Scope != "north" {
		t.Fatalf("expected fleet scope in envelope, got %q", payload.Scope)
	}
	if payload.Filters["search"] != "alp" {
		t.Fatalf("expected search filter recorded, got %v", payload.Filters)
	}
	if payload.Count != 3 {
		t.Fatalf("expected count 3, got %d", payload.Count)
	}
}
