package http

import (
	"context"
	nethttp "net/http"
	"time"

	fleetstore "go-fleet-ops-dashboard/internal/connectors/fleetdb"
	paystore "go-fleet-ops-dashboard/internal/connectors/paydb"
)

func fleetSummaryHandler(defaultFleet string, store *fleetstore.Store, payStore *paystore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}

		fleet := r.URL.Query().Get("fleet")
		if fleet == "" {
			fleet = defaultFleet
		}

		monthStr := r.URL.Query().Get("month")
		if monthStr == "" {
			monthStr = time.Now().UTC().Format("2006-01")
		}

		month, err := time.Parse("2006-01", monthStr)
		if err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{
				"error": "invalid month format, expected YYYY-MM",
			})
			return
		}

		start := time.Now()
		report, err := store.GetFleetSummary(r.Context(), fleet, month)
		recordDBQuery("fleetdb", "GetFleetSummary", time.Since(start).Seconds(), err)
		recordReportRun(map[bool]string{true: "error", false: "success"}[err != nil], time.Since(start).Seconds())
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to build fleet summary"})
			return
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"fleet":             report.CarrierID,
				"month":             report.Month,
				"fleet_filter_mode": store.CarrierMappingMode(),
			},
			"kpis":         report.KPIs,
			"timeseries":   report.Timeseries,
			"integrations": buildReportIntegrations(r.Context(), payStore, month),
		})
	}
}

func buildReportIntegrations(ctx context.Context, payStore *paystore.Store, month time.Time) map[string]any {
	out := map[string]any{}
	if payStore == nil {
		out["payments_db"] = map[string]any{
			"enabled": false,
			"error":   "payments db integration disabled",
		}
		return out
	}

	start := time.Now()
	stats, err := payStore.ReportStats(ctx, month)
	recordDBQuery("paydb", "ReportStats", time.Since(start).Seconds(), err)
	if err != nil {
		out["payments_db"] = map[string]any{
			"enabled": true,
			"ok":      false,
			"error":   err.Error(),
		}
		return out
	}

	out["payments_db"] = map[string]any{
		"enabled": true,
		"ok":      true,
		"stats":   stats,
	}
	return out
}
