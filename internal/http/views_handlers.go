package http

import (
	"encoding/json"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"go-fleet-ops-dashboard/internal/auth"
	"go-fleet-ops-dashboard/internal/config"
	fleetstore "go-fleet-ops-dashboard/internal/connectors/fleetdb"
)

type saveViewRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Scope       string         `json:"scope"`
	Config      map[string]any `json:"config"`
}

type createMappingRequest struct {
	FleetCode string `json:"fleet_code"`
}

type replaceMappingsRequest struct {
	Fleets []string `json:"fleets"`
}

func savedViewsHandler(cfg config.Config, store *fleetstore.Store, perms auth.Permissions) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}
		if !store.HasViewStore() {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "saved view sqlite store not available",
				"hint":  "set APP_FLEET_MAP_SQLITE_PATH to enable app-owned view persistence",
			})
			return
		}

		switch r.Method {
		case nethttp.MethodGet:
			scope := strings.TrimSpace(r.URL.Query().Get("scope"))
			limit := cfg.MaxPageSize
			start := time.Now()
			items, err := store.ListSavedViews(r.Context(), scope, limit)
			recordDBQuery("appsqlite", "ListSavedViews", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to list saved views"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"meta": map[string]any{"count": len(items), "scope": scope},
				"data": items,
			})
		case nethttp.MethodPost:
			if !perms.Allows(auth.CapWriteViews) {
				writeJSON(w, nethttp.StatusForbidden, map[string]any{
					"error": "view write capability not granted (set APP_ALLOW_VIEW_WRITES=true)",
				})
				return
			}
			var req saveViewRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
				return
			}
			req.Name = strings.TrimSpace(req.Name)
			req.Description = strings.TrimSpace(req.Description)
			req.Scope = strings.TrimSpace(req.Scope)
			if req.Name == "" {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "view name is required"})
				return
			}
			if req.Scope == "" {
				req.Scope = "drivers"
			}
			if req.Config == nil {
				req.Config = map[string]any{}
			}
			configJSON, err := json.Marshal(req.Config)
			if err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid view config"})
				return
			}
			startUpsert := time.Now()
			id, err := store.UpsertSavedView(r.Context(), req.Name, req.Description, req.Scope, string(configJSON))
			recordDBQuery("appsqlite", "UpsertSavedView", time.Since(startUpsert).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			startGet := time.Now()
			item, err := store.GetSavedView(r.Context(), id)
			recordDBQuery("appsqlite", "GetSavedView", time.Since(startGet).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "view saved but failed to read it back"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"meta": map[string]any{"saved": true},
				"data": item,
			})
		default:
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		}
	}
}

func savedViewDetailHandler(store *fleetstore.Store, perms auth.Permissions) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}
		if !store.HasViewStore() {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "saved view sqlite store not available",
				"hint":  "set APP_FLEET_MAP_SQLITE_PATH to enable app-owned view persistence",
			})
			return
		}

		idRaw := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/views/"), "/")
		id, err := strconv.ParseInt(idRaw, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid view id"})
			return
		}

		switch r.Method {
		case nethttp.MethodGet:
			startGet := time.Now()
			item, err := store.GetSavedView(r.Context(), id)
			recordDBQuery("appsqlite", "GetSavedView", time.Since(startGet).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "view not found"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{"data": item})
		case nethttp.MethodDelete:
			if !perms.Allows(auth.CapWriteViews) {
				writeJSON(w, nethttp.StatusForbidden, map[string]any{
					"error": "view write capability not granted (set APP_ALLOW_VIEW_WRITES=true)",
				})
				return
			}
			startDelete := time.Now()
			deleted, err := store.DeleteSavedView(r.Context(), id)
			recordDBQuery("appsqlite", "DeleteSavedView", time.Since(startDelete).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to delete view"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"meta": map[string]any{"deleted": deleted, "id": id},
			})
		default:
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		}
	}
}

func carriersHandler(cfg config.Config, store *fleetstore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}
		if r.Method != nethttp.MethodGet {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}

		limit := cfg.MaxPageSize
		start := time.Now()
		items, err := store.ListCarriers(r.Context(), limit)
		recordDBQuery("fleetdb", "ListCarriers", time.Since(start).Seconds(), err)
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to list carriers"})
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{"count": len(items), "mode": store.CarrierMappingMode()},
			"data": items,
		})
	}
}

// carrierMappingsRouter serves /api/v1/carriers/{id}/mappings.
func carrierMappingsRouter(store *fleetstore.Store, perms auth.Permissions) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "fleet database integration disabled (set APP_FLEET_DB_ENABLED=true)",
			})
			return
		}

		trimmed := strings.TrimPrefix(r.URL.Path, "/api/v1/carriers/")
		parts := strings.Split(strings.Trim(trimmed, "/"), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] != "mappings" {
			writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "not found"})
			return
		}
		carrierID := parts[0]

		if !store.HasCarrierFleetMapping() && r.Method != nethttp.MethodGet {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "carrier mapping backend not available",
				"hint":  "set APP_FLEET_MAP_SQLITE_PATH or create CarrierFleets in the fleet database",
			})
			return
		}

		switch r.Method {
		case nethttp.MethodGet:
			start := time.Now()
			mappings, err := store.GetCarrierMappings(r.Context(), carrierID)
			recordDBQuery("fleetdb", "GetCarrierMappings", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to fetch carrier mappings"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"meta": map[string]any{"carrier_id": carrierID, "count": len(mappings.Fleets)},
				"data": mappings,
			})
		case nethttp.MethodPost:
			if !perms.Allows(auth.CapWriteMappings) {
				writeJSON(w, nethttp.StatusForbidden, map[string]any{
					"error": "mapping write capability not granted (set APP_ALLOW_VIEW_WRITES=true)",
				})
				return
			}
			var req createMappingRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
				return
			}
			if strings.TrimSpace(req.FleetCode) == "" {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "fleet_code is required"})
				return
			}
			start := time.Now()
			err := store.CreateCarrierMapping(r.Context(), carrierID, req.FleetCode)
			recordDBQuery("fleetdb", "CreateCarrierMapping", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to create carrier mapping"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"meta": map[string]any{"carrier_id": carrierID, "created": true},
			})
		case nethttp.MethodPut:
			if !perms.Allows(auth.CapWriteMappings) {
				writeJSON(w, nethttp.StatusForbidden, map[string]any{
					"error": "mapping write capability not granted (set APP_ALLOW_VIEW_WRITES=true)",
				})
				return
			}
			var req replaceMappingsRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
				return
			}
			start := time.Now()
			count, err := store.ReplaceCarrierMappings(r.Context(), carrierID, req.Fleets)
			recordDBQuery("fleetdb", "ReplaceCarrierMappings", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to replace carrier mappings"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"meta": map[string]any{"carrier_id": carrierID, "count": count},
			})
		case nethttp.MethodDelete:
			if !perms.Allows(auth.CapWriteMappings) {
				writeJSON(w, nethttp.StatusForbidden, map[string]any{
					"error": "mapping write capability not granted (set APP_ALLOW_VIEW_WRITES=true)",
				})
				return
			}
			fleetCode := strings.TrimSpace(r.URL.Query().Get("fleet"))
			start := time.Now()
			var (
				deleted int64
				err     error
			)
			if fleetCode == "" {
				deleted, err = store.DeleteAllCarrierMappings(r.Context(), carrierID)
				recordDBQuery("fleetdb", "DeleteAllCarrierMappings", time.Since(start).Seconds(), err)
			} else {
				deleted, err = store.DeleteCarrierMapping(r.Context(), carrierID, fleetCode)
				recordDBQuery("fleetdb", "DeleteCarrierMapping", time.Since(start).Seconds(), err)
			}
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to delete carrier mappings"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"meta": map[string]any{"carrier_id": carrierID, "deleted": deleted},
			})
		default:
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		}
	}
}
