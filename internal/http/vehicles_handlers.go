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
	"go-fleet-ops-dashboard/internal/records"
)

func vehicleSchema(cfg config.Config) records.Schema[fleetstore.Vehicle] {
	windows := records.DueWindows{
		DueSoonDays:  cfg.MaintenanceDueSoonDays,
		DueLaterDays: cfg.MaintenanceDueLaterDays,
	}
	urgency := func(due *time.Time) records.Value {
		u, ok := records.ClassifyDueDate(due, time.Now().UTC(), windows)
		if !ok {
			return records.Null()
		}
		return records.String(u.String())
	}

	return records.NewSchema(
		records.Column[fleetstore.Vehicle]{Key: "vehicle_id", Title: "Vehicle ID", Value: func(v fleetstore.Vehicle) records.Value { return records.String(v.VehicleID) }, Searchable: true},
		records.Column[fleetstore.Vehicle]{Key: "rego", Title: "Rego", Value: func(v fleetstore.Vehicle) records.Value { return records.String(v.Rego) }, Searchable: true},
		records.Column[fleetstore.Vehicle]{Key: "fleet", Title: "Fleet", Value: func(v fleetstore.Vehicle) records.Value { return records.String(v.Fleet) }, Searchable: true},
		records.Column[fleetstore.Vehicle]{Key: "depot", Title: "Depot", Value: func(v fleetstore.Vehicle) records.Value { return records.String(v.Depot) }, Searchable: true},
		records.Column[fleetstore.Vehicle]{Key: "make", Title: "Make", Value: func(v fleetstore.Vehicle) records.Value { return records.String(v.Make) }, Searchable: true},
		records.Column[fleetstore.Vehicle]{Key: "model", Title: "Model", Value: func(v fleetstore.Vehicle) records.Value { return records.String(v.Model) }, Searchable: true},
		records.Column[fleetstore.Vehicle]{Key: "odometer_km", Title: "Odometer (km)", Value: func(v fleetstore.Vehicle) records.Value { return records.Number(float64(v.OdometerKM)) }},
		records.Column[fleetstore.Vehicle]{Key: "next_service_due", Title: "Next Service", Value: func(v fleetstore.Vehicle) records.Value { return records.TimePtr(v.NextServiceDue) }},
		records.Column[fleetstore.Vehicle]{Key: "service_urgency", Title: "Service Urgency", Value: func(v fleetstore.Vehicle) records.Value { return urgency(v.NextServiceDue) }},
		records.Column[fleetstore.Vehicle]{Key: "rego_expiry", Title: "Rego Expiry", Value: func(v fleetstore.Vehicle) records.Value { return records.TimePtr(v.RegoExpiry) }},
		records.Column[fleetstore.Vehicle]{Key: "rego_urgency", Title: "Rego Urgency", Value: func(v fleetstore.Vehicle) records.Value { return urgency(v.RegoExpiry) }},
		records.Column[fleetstore.Vehicle]{Key: "open_items", Title: "Open Items", Value: func(v fleetstore.Vehicle) records.Value { return records.Number(float64(v.OpenItems)) }},
	)
}

func fetchVehicleTable(r *nethttp.Request, cfg config.Config, store *fleetstore.Store) (records.Schema[fleetstore.Vehicle], tableResult[fleetstore.Vehicle], tableParams, error) {
	p := parseTableParams(r, cfg, "next_service_due", "service_urgency", "rego_urgency", "depot", "make")
	if p.Fleet == "" {
		p.Fleet = cfg.DefaultFleet
	}

	start := time.Now()
	items, err := store.ListVehicles(r.Context(), p.Fleet, fetchLimit)
	recordDBQuery("fleetdb", "ListVehicles", time.Since(start).Seconds(), err)
	if err != nil {
		return records.Schema[fleetstore.Vehicle]{}, tableResult[fleetstore.Vehicle]{}, p, err
	}

	s := vehicleSchema(cfg)
	res := runTable(s, items, p.query(cfg, "next_service_due"), p.SortKey, p.SortDesc, p.Page, p.PageSize)
	return s, res, p, nil
}

func vehiclesHandler(cfg config.Config, store *fleetstore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}

		s, res, p, err := fetchVehicleTable(r, cfg, store)
		if err != nil {
			status := nethttp.StatusInternalServerError
			if errors.Is(err, nethttp.ErrHandlerTimeout) {
				status = nethttp.StatusGatewayTimeout
			}
			writeJSON(w, status, map[string]any{"error": "failed to fetch vehicles"})
			return
		}

		summary := records.Summarize(s, res.Filtered, []string{"open_items", "odometer_km"}, "service_urgency")
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta":    res.meta(p),
			"summary": summary,
			"data":    res.Rows,
		})
	}
}

func vehiclesExportHandler(cfg config.Config, store *fleetstore.Store, perms auth.Permissions) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}

		s, res, p, err := fetchVehicleTable(r, cfg, store)
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to fetch vehicles"})
			return
		}

		summary := records.Summarize(s, res.Filtered, []string{"open_items", "odometer_km"}, "service_urgency")
		serveExport(w, r, s, res, perms, "vehicles", p, summary)
	}
}

func maintenanceSchema(cfg config.Config) records.Schema[fleetstore.MaintenanceItem] {
	windows := records.DueWindows{
		DueSoonDays:  cfg.MaintenanceDueSoonDays,
		DueLaterDays: cfg.MaintenanceDueLaterDays,
	}

	return records.NewSchema(
		records.Column[fleetstore.MaintenanceItem]{Key: "item_id", Title: "Item ID", Value: func(m fleetstore.MaintenanceItem) records.Value { return records.Number(float64(m.ItemID)) }},
		records.Column[fleetstore.MaintenanceItem]{Key: "vehicle_id", Title: "Vehicle ID", Value: func(m fleetstore.MaintenanceItem) records.Value { return records.String(m.VehicleID) }, Searchable: true},
		records.Column[fleetstore.MaintenanceItem]{Key: "rego", Title: "Rego", Value: func(m fleetstore.MaintenanceItem) records.Value { return records.String(m.Rego) }, Searchable: true},
		records.Column[fleetstore.MaintenanceItem]{Key: "fleet", Title: "Fleet", Value: func(m fleetstore.MaintenanceItem) records.Value { return records.String(m.Fleet) }, Searchable: true},
		records.Column[fleetstore.MaintenanceItem]{Key: "work_type", Title: "Work Type", Value: func(m fleetstore.MaintenanceItem) records.Value { return records.String(m.WorkType) }, Searchable: true},
		records.Column[fleetstore.MaintenanceItem]{Key: "description", Title: "Description", Value: func(m fleetstore.MaintenanceItem) records.Value { return records.String(m.Description) }, Searchable: true},
		records.Column[fleetstore.MaintenanceItem]{Key: "due_date", Title: "Due Date", Value: func(m fleetstore.MaintenanceItem) records.Value { return records.TimePtr(m.DueDate) }},
		records.Column[fleetstore.MaintenanceItem]{Key: "urgency", Title: "Urgency", Value: func(m fleetstore.MaintenanceItem) records.Value {
			if m.CompletedAt != nil {
				return records.String("completed")
			}
			u, ok := records.ClassifyDueDate(m.DueDate, time.Now().UTC(), windows)
			if !ok {
				return records.Null()
			}
			return records.String(u.String())
		}},
		records.Column[fleetstore.MaintenanceItem]{Key: "completed_at", Title: "Completed", Value: func(m fleetstore.MaintenanceItem) records.Value { return records.TimePtr(m.CompletedAt) }},
		records.Column[fleetstore.MaintenanceItem]{Key: "cost_dollars", Title: "Cost ($)", Value: func(m fleetstore.MaintenanceItem) records.Value { return records.NumberPtr(m.CostDollars) }},
	)
}

func fetchMaintenanceTable(r *nethttp.Request, cfg config.Config, store *fleetstore.Store) (records.Schema[fleetstore.MaintenanceItem], tableResult[fleetstore.MaintenanceItem], tableParams, error) {
	p := parseTableParams(r, cfg, "due_date", "urgency", "work_type")
	if p.Fleet == "" {
		p.Fleet = cfg.DefaultFleet
	}

	openOnly := strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("open")), "true")

	var month *time.Time
	if monthStr := strings.TrimSpace(r.URL.Query().Get("month")); monthStr != "" {
		parsed, err := time.Parse("2006-01", monthStr)
		if err != nil {
			return records.Schema[fleetstore.MaintenanceItem]{}, tableResult[fleetstore.MaintenanceItem]{}, p, errBadMonth
		}
		month = &parsed
	}

	start := time.Now()
	items, err := store.ListMaintenance(r.Context(), p.Fleet, openOnly, month, fetchLimit, 0)
	recordDBQuery("fleetdb", "ListMaintenance", time.Since(start).Seconds(), err)
	if err != nil {
		return records.Schema[fleetstore.MaintenanceItem]{}, tableResult[fleetstore.MaintenanceItem]{}, p, err
	}

	s := maintenanceSchema(cfg)
	res := runTable(s, items, p.query(cfg, "due_date"), p.SortKey, p.SortDesc, p.Page, p.PageSize)
	return s, res, p, nil
}

var errBadMonth = errors.New("invalid month format, expected YYYY-MM")

func maintenanceHandler(cfg config.Config, store *fleetstore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}

		s, res, p, err := fetchMaintenanceTable(r, cfg, store)
		if err != nil {
			if errors.Is(err, errBadMonth) {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			status := nethttp.StatusInternalServerError
			if errors.Is(err, nethttp.ErrHandlerTimeout) {
				status = nethttp.StatusGatewayTimeout
			}
			writeJSON(w, status, map[string]any{"error": "failed to fetch maintenance items"})
			return
		}

		summary := records.Summarize(s, res.Filtered, []string{"cost_dollars"}, "urgency")
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta":    res.meta(p),
			"summary": summary,
			"data":    res.Rows,
		})
	}
}

func maintenanceExportHandler(cfg config.Config, store *fleetstore.Store, perms auth.Permissions) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}

		s, res, p, err := fetchMaintenanceTable(r, cfg, store)
		if err != nil {
			if errors.Is(err, errBadMonth) {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to fetch maintenance items"})
			return
		}

		summary := records.Summarize(s, res.Filtered, []string{"cost_dollars"}, "urgency")
		serveExport(w, r, s, res, perms, "maintenance", p, summary)
	}
}

// parseChartMonths reads a bounded months window for chart endpoints.
func parseChartMonths(r *nethttp.Request, def, max int) int {
	months := def
	if raw := r.URL.Query().Get("months"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= max {
			months = parsed
		}
	}
	return months
}
