package http

import (
	"context"
	nethttp "net/http"
	"time"

	fleetstore "go-fleet-ops-dashboard/internal/connectors/fleetdb"
	gaugestore "go-fleet-ops-dashboard/internal/connectors/gauges"
	paystore "go-fleet-ops-dashboard/internal/connectors/paydb"
	telstore "go-fleet-ops-dashboard/internal/connectors/telematics"
)

func servicesStatusHandler(store *fleetstore.Store, payStore *paystore.Store, telClient *telstore.Client, scraper *gaugestore.Scraper) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
		defer cancel()

		payload := map[string]any{
			"generated_at": time.Now().UTC(),
			"services":     map[string]any{},
		}
		services := payload["services"].(map[string]any)

		services["fleet_db"] = fleetDBStatus(ctx, store)
		services["payments_db"] = payDBStatus(ctx, payStore)
		services["telematics"] = telematicsStatus(ctx, telClient)
		services["gauges"] = gaugeStatus(ctx, scraper)

		writeJSON(w, nethttp.StatusOK, payload)
	}
}

func fleetDBStatus(ctx context.Context, store *fleetstore.Store) map[string]any {
	if store == nil {
		return map[string]any{"enabled": false, "ok": false, "error": "fleet database integration disabled"}
	}

	start := time.Now()
	stats, err := store.ServiceStats(ctx)
	recordDBQuery("fleetdb", "ServiceStats", time.Since(start).Seconds(), err)
	if err != nil {
		return map[string]any{"enabled": true, "ok": false, "error": err.Error()}
	}

	return map[string]any{"enabled": true, "ok": true, "stats": stats}
}

func payDBStatus(ctx context.Context, store *paystore.Store) map[string]any {
	if store == nil {
		return map[string]any{"enabled": false, "ok": false, "error": "payments db integration disabled"}
	}

	start := time.Now()
	stats, err := store.ServiceStats(ctx)
	recordDBQuery("paydb", "ServiceStats", time.Since(start).Seconds(), err)
	if err != nil {
		return map[string]any{"enabled": true, "ok": false, "error": err.Error()}
	}
	return map[string]any{"enabled": true, "ok": true, "stats": stats}
}

func telematicsStatus(ctx context.Context, telClient *telstore.Client) map[string]any {
	if telClient == nil || !telClient.Enabled() {
		return map[string]any{"enabled": false, "ok": false, "error": "telematics integration disabled"}
	}

	start := time.Now()
	stats, err := telClient.ServiceStats(ctx)
	recordExternalProbe("telematics", "ServiceStats", time.Since(start).Seconds(), err)
	if err != nil {
		return map[string]any{"enabled": true, "ok": false, "error": err.Error()}
	}

	return map[string]any{"enabled": true, "ok": true, "stats": stats}
}

func gaugeStatus(ctx context.Context, scraper *gaugestore.Scraper) map[string]any {
	if scraper == nil || !scraper.Enabled() {
		return map[string]any{"enabled": false, "ok": false, "error": "gauge scraping disabled"}
	}

	start := time.Now()
	probes := scraper.ProbeTargets(ctx, []string{
		"process_start_time_seconds",
		"go_goroutines",
		"process_resident_memory_bytes",
		"process_cpu_seconds_total",
	})
	recordExternalProbe("gauge_target", "ProbeTargets", time.Since(start).Seconds(), nil)

	up := 0
	for _, p := range probes {
		if p.OK {
			up++
		}
	}

	return map[string]any{
		"enabled":       true,
		"ok":            up == len(probes) && len(probes) > 0,
		"targets_total": len(probes),
		"targets_up":    up,
		"targets":       probes,
	}
}

func carrierMappingStatusHandler(store *fleetstore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"enabled": false,
				"error":   "fleet database integration disabled",
			})
			return
		}

		mode := store.CarrierMappingMode()
		payload := map[string]any{
			"enabled":               store.HasCarrierFleetMapping(),
			"mode":                  mode,
			"sqlite_path":           "",
			"supports_mapping_crud": store.HasCarrierFleetMapping(),
		}
		if mode == "sqlite_carrier_mappings" {
			payload["sqlite_path"] = store.CarrierMappingPath()
		}

		writeJSON(w, nethttp.StatusOK, payload)
	}
}
