package http

import (
	"errors"
	nethttp "net/http"
	"strings"
	"time"

	"go-fleet-ops-dashboard/internal/auth"
	"go-fleet-ops-dashboard/internal/config"
	paystore "go-fleet-ops-dashboard/internal/connectors/paydb"
	"go-fleet-ops-dashboard/internal/records"
)

func deliverySchema() records.Schema[paystore.Delivery] {
	return records.NewSchema(
		records.Column[paystore.Delivery]{Key: "id", Title: "ID", Value: func(d paystore.Delivery) records.Value { return records.Number(float64(d.ID)) }},
		records.Column[paystore.Delivery]{Key: "docket_number", Title: "Docket", Value: func(d paystore.Delivery) records.Value { return records.String(d.DocketNumber) }, Searchable: true},
		records.Column[paystore.Delivery]{Key: "carrier", Title: "Carrier", Value: func(d paystore.Delivery) records.Value { return records.String(d.Carrier) }, Searchable: true},
		records.Column[paystore.Delivery]{Key: "fleet", Title: "Fleet", Value: func(d paystore.Delivery) records.Value { return records.String(d.Fleet) }, Searchable: true},
		records.Column[paystore.Delivery]{Key: "depot", Title: "Depot", Value: func(d paystore.Delivery) records.Value { return records.String(d.Depot) }, Searchable: true},
		records.Column[paystore.Delivery]{Key: "product", Title: "Product", Value: func(d paystore.Delivery) records.Value { return records.String(d.Product) }, Searchable: true},
		records.Column[paystore.Delivery]{Key: "status", Title: "Status", Value: func(d paystore.Delivery) records.Value { return records.String(d.Status) }},
		records.Column[paystore.Delivery]{Key: "volume_litres", Title: "Volume (L)", Value: func(d paystore.Delivery) records.Value { return records.Number(d.VolumeLitres) }},
		records.Column[paystore.Delivery]{Key: "amount_dollars", Title: "Amount ($)", Value: func(d paystore.Delivery) records.Value { return records.NumberPtr(d.AmountDollars) }},
		records.Column[paystore.Delivery]{Key: "delivered_at", Title: "Delivered", Value: func(d paystore.Delivery) records.Value { return records.TimePtr(d.DeliveredAt) }},
	)
}

func fetchDeliveryTable(r *nethttp.Request, cfg config.Config, store *paystore.Store) (records.Schema[paystore.Delivery], tableResult[paystore.Delivery], tableParams, error) {
	p := parseTableParams(r, cfg, "delivered_at", "status", "product", "fleet", "depot")

	carrier := strings.TrimSpace(r.URL.Query().Get("carrier"))
	months := parseChartMonths(r, 6, 24)
	since := time.Now().UTC().AddDate(0, -months, 0)

	start := time.Now()
	items, err := store.ListDeliveries(r.Context(), carrier, since, fetchLimit)
	recordDBQuery("paydb", "ListDeliveries", time.Since(start).Seconds(), err)
	if err != nil {
		return records.Schema[paystore.Delivery]{}, tableResult[paystore.Delivery]{}, p, err
	}

	s := deliverySchema()
	res := runTable(s, items, p.query(cfg, "delivered_at"), p.SortKey, p.SortDesc, p.Page, p.PageSize)
	return s, res, p, nil
}

func deliveriesHandler(cfg config.Config, store *paystore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "payments database integration disabled (set APP_PAY_DB_ENABLED=true)",
			})
			return
		}

		s, res, p, err := fetchDeliveryTable(r, cfg, store)
		if err != nil {
			status := nethttp.StatusInternalServerError
			if errors.Is(err, nethttp.ErrHandlerTimeout) {
				status = nethttp.StatusGatewayTimeout
			}
			writeJSON(w, status, map[string]any{"error": "failed to fetch deliveries"})
			return
		}

		summary := records.Summarize(s, res.Filtered, []string{"volume_litres", "amount_dollars"}, "carrier")
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta":    res.meta(p),
			"summary": summary,
			"data":    res.Rows,
		})
	}
}

func deliveriesExportHandler(cfg config.Config, store *paystore.Store, perms auth.Permissions) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "payments database integration disabled (set APP_PAY_DB_ENABLED=true)",
			})
			return
		}

		s, res, p, err := fetchDeliveryTable(r, cfg, store)
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to fetch deliveries"})
			return
		}

		summary := records.Summarize(s, res.Filtered, []string{"volume_litres", "amount_dollars"}, "carrier")
		serveExport(w, r, s, res, perms, "deliveries", p, summary)
	}
}

func deliveriesChartHandler(store *paystore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "payments database integration disabled (set APP_PAY_DB_ENABLED=true)",
			})
			return
		}

		carrier := strings.TrimSpace(r.URL.Query().Get("carrier"))
		months := parseChartMonths(r, 12, 36)
		since := time.Now().UTC().AddDate(0, -months, 0)

		start := time.Now()
		monthly, err := store.MonthlyVolumes(r.Context(), carrier, months)
		recordDBQuery("paydb", "MonthlyVolumes", time.Since(start).Seconds(), err)
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to build delivery chart"})
			return
		}

		startCarriers := time.Now()
		carriers, err := store.CarrierVolumes(r.Context(), since, 50)
		recordDBQuery("paydb", "CarrierVolumes", time.Since(startCarriers).Seconds(), err)
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to build carrier totals"})
			return
		}

		meta := map[string]any{
			"months":       months,
			"month_points": len(monthly),
		}
		if carrier != "" {
			meta["carrier"] = carrier
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": meta,
			"data": map[string]any{
				"monthly":  monthly,
				"carriers": carriers,
			},
		})
	}
}
