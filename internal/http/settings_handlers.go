package http

import (
	nethttp "net/http"

	"go-fleet-ops-dashboard/internal/config"
)

func riskThresholdsHandler(cfg config.Config) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"data": map[string]any{
				"risk_secondary_hot_count":   cfg.RiskSecondaryHotCount,
				"risk_score_floor":           cfg.RiskScoreFloor,
				"tank_critical_percent":      cfg.TankCriticalPercent,
				"tank_low_percent":           cfg.TankLowPercent,
				"tank_watch_percent":         cfg.TankWatchPercent,
				"maintenance_due_soon_days":  cfg.MaintenanceDueSoonDays,
				"maintenance_due_later_days": cfg.MaintenanceDueLaterDays,
				"search_min_length":          cfg.SearchMinLength,
			},
		})
	}
}
