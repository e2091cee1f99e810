package http

import (
	"errors"
	nethttp "net/http"
	"strings"
	"time"

	"go-fleet-ops-dashboard/internal/auth"
	"go-fleet-ops-dashboard/internal/config"
	fleetstore "go-fleet-ops-dashboard/internal/connectors/fleetdb"
	telstore "go-fleet-ops-dashboard/internal/connectors/telematics"
	"go-fleet-ops-dashboard/internal/records"
)

func driverSchema(cfg config.Config) records.Schema[fleetstore.Driver] {
	thresholds := records.RiskThresholds{
		SecondaryHotCount: int64(cfg.RiskSecondaryHotCount),
	}

	return records.NewSchema(
		records.Column[fleetstore.Driver]{Key: "driver_id", Title: "Driver ID", Value: func(d fleetstore.Driver) records.Value { return records.String(d.DriverID) }, Searchable: true},
		records.Column[fleetstore.Driver]{Key: "name", Title: "Name", Value: func(d fleetstore.Driver) records.Value { return records.String(d.Name) }, Searchable: true},
		records.Column[fleetstore.Driver]{Key: "fleet", Title: "Fleet", Value: func(d fleetstore.Driver) records.Value { return records.String(d.Fleet) }, Searchable: true},
		records.Column[fleetstore.Driver]{Key: "depot", Title: "Depot", Value: func(d fleetstore.Driver) records.Value { return records.String(d.Depot) }, Searchable: true},
		records.Column[fleetstore.Driver]{Key: "safety_score", Title: "Safety Score", Value: func(d fleetstore.Driver) records.Value { return records.NumberPtr(d.SafetyScore) }},
		records.Column[fleetstore.Driver]{Key: "high_risk_events", Title: "High Risk", Value: func(d fleetstore.Driver) records.Value { return records.Number(float64(d.HighRiskEvents)) }},
		records.Column[fleetstore.Driver]{Key: "harsh_braking", Title: "Harsh Braking", Value: func(d fleetstore.Driver) records.Value { return records.Number(float64(d.HarshBraking)) }},
		records.Column[fleetstore.Driver]{Key: "distraction", Title: "Distraction", Value: func(d fleetstore.Driver) records.Value { return records.Number(float64(d.Distraction)) }},
		records.Column[fleetstore.Driver]{Key: "fatigue", Title: "Fatigue", Value: func(d fleetstore.Driver) records.Value { return records.Number(float64(d.Fatigue)) }},
		records.Column[fleetstore.Driver]{Key: "speeding", Title: "Speeding", Value: func(d fleetstore.Driver) records.Value { return records.Number(float64(d.Speeding)) }},
		records.Column[fleetstore.Driver]{Key: "secondary_events", Title: "Secondary", Value: func(d fleetstore.Driver) records.Value { return records.Number(float64(d.SecondaryEvents())) }},
		records.Column[fleetstore.Driver]{Key: "risk", Title: "Risk", Value: func(d fleetstore.Driver) records.Value {
			return records.String(records.ClassifyRisk(d.HighRiskEvents, d.SecondaryEvents(), thresholds).String())
		}},
		records.Column[fleetstore.Driver]{Key: "last_event_at", Title: "Last Event", Value: func(d fleetstore.Driver) records.Value { return records.TimePtr(d.LastEventAt) }},
	)
}

func fetchDriverTable(r *nethttp.Request, cfg config.Config, store *fleetstore.Store) (records.Schema[fleetstore.Driver], tableResult[fleetstore.Driver], tableParams, error) {
	p := parseTableParams(r, cfg, "high_risk_events", "risk", "depot")
	if p.Fleet == "" {
		p.Fleet = cfg.DefaultFleet
	}

	eventsSince := time.Now().UTC().AddDate(0, 0, -cfg.TelematicsLookback)
	start := time.Now()
	items, err := store.ListDrivers(r.Context(), p.Fleet, eventsSince, fetchLimit)
	recordDBQuery("fleetdb", "ListDrivers", time.Since(start).Seconds(), err)
	if err != nil {
		return records.Schema[fleetstore.Driver]{}, tableResult[fleetstore.Driver]{}, p, err
	}

	s := driverSchema(cfg)
	res := runTable(s, items, p.query(cfg, "last_event_at"), p.SortKey, p.SortDesc, p.Page, p.PageSize)
	return s, res, p, nil
}

func driversHandler(cfg config.Config, store *fleetstore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}

		s, res, p, err := fetchDriverTable(r, cfg, store)
		if err != nil {
			status := nethttp.StatusInternalServerError
			if errors.Is(err, nethttp.ErrHandlerTimeout) {
				status = nethttp.StatusGatewayTimeout
			}
			writeJSON(w, status, map[string]any{"error": "failed to fetch drivers"})
			return
		}

		summary := records.Summarize(s, res.Filtered, []string{"high_risk_events", "secondary_events", "safety_score"}, "risk")
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta":    res.meta(p),
			"summary": summary,
			"data":    res.Rows,
		})
	}
}

func driversExportHandler(cfg config.Config, store *fleetstore.Store, perms auth.Permissions) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}

		s, res, p, err := fetchDriverTable(r, cfg, store)
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to fetch drivers"})
			return
		}

		summary := records.Summarize(s, res.Filtered, []string{"high_risk_events", "secondary_events", "safety_score"}, "risk")
		serveExport(w, r, s, res, perms, "drivers", p, summary)
	}
}

// driverEventsRouter serves /api/v1/drivers/{id}/events: recorded events from
// the fleet database merged with a live provider lookup when telematics is
// enabled.
func driverEventsRouter(cfg config.Config, store *fleetstore.Store, telClient *telstore.Client) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}

		trimmed := strings.TrimPrefix(r.URL.Path, "/api/v1/drivers/")
		parts := strings.Split(strings.Trim(trimmed, "/"), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] != "events" {
			writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "not found"})
			return
		}
		driverID := parts[0]

		since := time.Now().UTC().AddDate(0, 0, -cfg.TelematicsLookback)
		limit := fetchLimit
		start := time.Now()
		events, err := store.ListDriverEvents(r.Context(), driverID, since, limit)
		recordDBQuery("fleetdb", "ListDriverEvents", time.Since(start).Seconds(), err)
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to fetch driver events"})
			return
		}

		meta := map[string]any{
			"driver_id": driverID,
			"since":     since.Format("2006-01-02"),
			"count":     len(events),
		}
		payload := map[string]any{
			"events": events,
		}

		if telClient != nil && telClient.Enabled() {
			startTel := time.Now()
			live, telErr := telClient.DriverEvents(r.Context(), driverID, since, limit)
			recordExternalProbe("telematics", "DriverEvents", time.Since(startTel).Seconds(), telErr)
			if telErr != nil {
				meta["telematics_error"] = telErr.Error()
			} else if live != nil {
				payload["provider"] = live
				meta["provider"] = live.Provider
				meta["provider_events"] = live.TotalEvents
			}
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": meta,
			"data": payload,
		})
	}
}
