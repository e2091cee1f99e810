package http

import (
	"errors"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"go-fleet-ops-dashboard/internal/auth"
	"go-fleet-ops-dashboard/internal/config"
	fleetstore "go-fleet-ops-dashboard/internal/connectors/fleetdb"
	gaugestore "go-fleet-ops-dashboard/internal/connectors/gauges"
	"go-fleet-ops-dashboard/internal/records"
)

// fetchLimit bounds how many rows a list endpoint pulls from a connector
// before the in-memory pipeline takes over. Fleet tables run to low
// thousands of rows, so one fetch covers the whole working set.
const fetchLimit = 2000

func tankSchema(cfg config.Config) records.Schema[fleetstore.Tank] {
	thresholds := records.TankThresholds{
		CriticalPercent: cfg.TankCriticalPercent,
		LowPercent:      cfg.TankLowPercent,
		WatchPercent:    cfg.TankWatchPercent,
	}

	return records.NewSchema(
		records.Column[fleetstore.Tank]{Key: "tank_id", Title: "Tank ID", Value: func(t fleetstore.Tank) records.Value { return records.String(t.TankID) }, Searchable: true},
		records.Column[fleetstore.Tank]{Key: "name", Title: "Name", Value: func(t fleetstore.Tank) records.Value { return records.String(t.Name) }, Searchable: true},
		records.Column[fleetstore.Tank]{Key: "depot", Title: "Depot", Value: func(t fleetstore.Tank) records.Value { return records.String(t.Depot) }, Searchable: true},
		records.Column[fleetstore.Tank]{Key: "fleet", Title: "Fleet", Value: func(t fleetstore.Tank) records.Value { return records.String(t.Fleet) }, Searchable: true},
		records.Column[fleetstore.Tank]{Key: "product", Title: "Product", Value: func(t fleetstore.Tank) records.Value { return records.String(t.Product) }, Searchable: true},
		records.Column[fleetstore.Tank]{Key: "capacity_litres", Title: "Capacity (L)", Value: func(t fleetstore.Tank) records.Value { return records.Number(t.CapacityLitres) }},
		records.Column[fleetstore.Tank]{Key: "current_litres", Title: "Current (L)", Value: func(t fleetstore.Tank) records.Value { return records.Number(t.CurrentLitres) }},
		records.Column[fleetstore.Tank]{Key: "percent_full", Title: "% Full", Value: func(t fleetstore.Tank) records.Value { return records.NumberPtr(t.PercentFull) }},
		records.Column[fleetstore.Tank]{Key: "status", Title: "Status", Value: func(t fleetstore.Tank) records.Value {
			if t.PercentFull == nil {
				return records.Null()
			}
			return records.String(records.ClassifyTankLevel(*t.PercentFull, thresholds).String())
		}},
		records.Column[fleetstore.Tank]{Key: "stale", Title: "Stale", Value: func(t fleetstore.Tank) records.Value { return records.String(strconv.FormatBool(t.Stale)) }},
		records.Column[fleetstore.Tank]{Key: "last_reading_at", Title: "Last Reading", Value: func(t fleetstore.Tank) records.Value { return records.TimePtr(t.LastReadingAt) }},
	)
}

func fetchTankTable(r *nethttp.Request, cfg config.Config, store *fleetstore.Store) (records.Schema[fleetstore.Tank], tableResult[fleetstore.Tank], tableParams, error) {
	p := parseTableParams(r, cfg, "percent_full", "status", "depot", "product")
	if p.Fleet == "" {
		p.Fleet = cfg.DefaultFleet
	}

	start := time.Now()
	items, err := store.ListTanks(r.Context(), p.Fleet, fetchLimit)
	recordDBQuery("fleetdb", "ListTanks", time.Since(start).Seconds(), err)
	if err != nil {
		return records.Schema[fleetstore.Tank]{}, tableResult[fleetstore.Tank]{}, p, err
	}

	s := tankSchema(cfg)
	res := runTable(s, items, p.query(cfg, "last_reading_at"), p.SortKey, p.SortDesc, p.Page, p.PageSize)
	return s, res, p, nil
}

func tanksHandler(cfg config.Config, store *fleetstore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}

		s, res, p, err := fetchTankTable(r, cfg, store)
		if err != nil {
			status := nethttp.StatusInternalServerError
			if errors.Is(err, nethttp.ErrHandlerTimeout) {
				status = nethttp.StatusGatewayTimeout
			}
			writeJSON(w, status, map[string]any{"error": "failed to fetch tanks"})
			return
		}

		summary := records.Summarize(s, res.Filtered, []string{"capacity_litres", "current_litres"}, "status")
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta":    res.meta(p),
			"summary": summary,
			"data":    res.Rows,
		})
	}
}

func tanksExportHandler(cfg config.Config, store *fleetstore.Store, perms auth.Permissions) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}

		s, res, p, err := fetchTankTable(r, cfg, store)
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to fetch tanks"})
			return
		}

		summary := records.Summarize(s, res.Filtered, []string{"capacity_litres", "current_litres"}, "status")
		serveExport(w, r, s, res, perms, "tanks", p, summary)
	}
}

func tankLevelsChartHandler(store *fleetstore.Store, scraper *gaugestore.Scraper, matchPrefix string) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		tankID := strings.TrimSpace(r.URL.Query().Get("tank"))
		if tankID == "" {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "tank query parameter is required"})
			return
		}

		days := 7
		if raw := r.URL.Query().Get("days"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 90 {
				days = parsed
			}
		}
		since := time.Now().UTC().AddDate(0, 0, -days)

		payload := map[string]any{}
		meta := map[string]any{
			"tank": tankID,
			"days": days,
		}

		if store != nil {
			start := time.Now()
			history, err := store.GetTankLevelHistory(r.Context(), tankID, since)
			recordDBQuery("fleetdb", "GetTankLevelHistory", time.Since(start).Seconds(), err)
			if err != nil {
				meta["db_error"] = err.Error()
			} else {
				payload["daily"] = history
				meta["daily_points"] = len(history)
			}
		}

		if scraper != nil && scraper.Enabled() {
			series := strings.TrimSpace(r.URL.Query().Get("series"))
			if series == "" {
				series = matchPrefix + "level_percent"
			}
			key := series + ":" + tankID
			live := map[string][]gaugestore.Point{}
			for _, target := range scraper.Targets() {
				if pts := scraper.Series(target, key, since); len(pts) > 0 {
					live[target] = pts
				}
			}
			payload["live"] = live
			meta["live_series"] = key
		}

		if len(payload) == 0 {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "no tank level source available (set APP_FLEET_DB_ENABLED=true or APP_GAUGES_ENABLED=true)",
			})
			return
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": meta,
			"data": payload,
		})
	}
}
