package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-fleet-ops-dashboard/internal/auth"
	"go-fleet-ops-dashboard/internal/config"
	fleetstore "go-fleet-ops-dashboard/internal/connectors/fleetdb"
)

func testConfig() config.Config {
	return config.Config{
		DefaultPageSize:         25,
		MaxPageSize:             500,
		DefaultFleet:            "all",
		SearchMinLength:         2,
		RiskSecondaryHotCount:   3,
		TankCriticalPercent:     10,
		TankLowPercent:          25,
		TankWatchPercent:        40,
		MaintenanceDueSoonDays:  7,
		MaintenanceDueLaterDays: 30,
	}
}

func TestTanksHandler_DBDisabled(t *testing.T) {
	h := tanksHandler(testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tanks?status=critical", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["error"] == nil {
		t.Fatalf("expected error field in response")
	}
}

func TestDeliveriesHandler_PayDBDisabled(t *testing.T) {
	h := deliveriesHandler(testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deliveries", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestMaintenanceHandler_BadMonthReturnsBadRequest(t *testing.T) {
	h := maintenanceHandler(testConfig(), &fleetstore.Store{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/maintenance?month=March-2026", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if msg, _ := payload["error"].(string); !strings.Contains(msg, "YYYY-MM") {
		t.Fatalf("expected format hint in error, got %q", msg)
	}
}

func TestDriverEventsRouter_DBDisabled(t *testing.T) {
	h := driverEventsRouter(testConfig(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drivers/D-100/events", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestDriverEventsRouter_UnknownActionReturnsNotFound(t *testing.T) {
	h := driverEventsRouter(testConfig(), &fleetstore.Store{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drivers/D-100/history", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestDriverEventsRouter_InvalidPathReturnsNotFound(t *testing.T) {
	h := driverEventsRouter(testConfig(), &fleetstore.Store{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drivers/D-100", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestSavedViewsHandler_NoViewStoreReturns503(t *testing.T) {
	h := savedViewsHandler(testConfig(), &fleetstore.Store{}, auth.NewPermissions(auth.CapWriteViews))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/views", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if hint, _ := payload["hint"].(string); !strings.Contains(hint, "APP_FLEET_MAP_SQLITE_PATH") {
		t.Fatalf("expected sqlite path hint, got %q", hint)
	}
}

func TestCarrierMappingsRouter_InvalidPathReturnsNotFound(t *testing.T) {
	h := carrierMappingsRouter(&fleetstore.Store{}, auth.NewPermissions())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/carriers/ACME", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestCarrierMappingsRouter_WriteWithoutBackendReturns503(t *testing.T) {
	h := carrierMappingsRouter(&fleetstore.Store{}, auth.NewPermissions(auth.CapWriteMappings))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/carriers/ACME/mappings",
		strings.NewReader(`{"fleet_code":"ACME-NORTH"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestRiskThresholdsHandler(t *testing.T) {
	h := riskThresholdsHandler(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/risk-thresholds", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var payload struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, key := range []string{
		"risk_secondary_hot_count", "tank_critical_percent", "tank_low_percent",
		"tank_watch_percent", "maintenance_due_soon_days", "search_min_length",
	} {
		if _, ok := payload.Data[key]; !ok {
			t.Fatalf("expected threshold %q in response", key)
		}
	}
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	healthHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestNormalizeMetricPath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"/", "/"},
		{"/metrics", "/metrics"},
		{"/api/v1/drivers/D-100/events", "/api/v1/drivers/{driver_id}/events"},
		{"/api/v1/carriers/ACME/mappings", "/api/v1/carriers/{carrier_id}/mappings"},
		{"/api/v1/views/42", "/api/v1/views/{id}"},
		{"/api/v1/tanks", "/api/v1/tanks"},
	}
	for _, c := range cases {
		if got := normalizeMetricPath(c.in); got != c.want {
			t.Fatalf("normalizeMetricPath(%q): want %q, got %q", c.in, c.want, got)
		}
	}
}
