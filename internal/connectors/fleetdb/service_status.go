package fleetdb

import (
	"context"
	"database/sql"
	"time"
)

// ServiceStats contains lightweight DB health and volume counters.
type ServiceStats struct {
	PingMS          int64 `json:"ping_ms"`
	UptimeSeconds   int64 `json:"uptime_seconds"`
	VehiclesTotal   int64 `json:"vehicles_total"`
	DriversTotal    int64 `json:"drivers_total"`
	TanksTotal      int64 `json:"tanks_total"`
	MaintenanceOpen int64 `json:"maintenance_open"`
	SafetyEvents24h int64 `json:"safety_events_24h"`
	TankReadings24h int64 `json:"tank_readings_24h"`
}

// ServiceStats returns MySQL health and high-level fleet counters.
func (s *Store) ServiceStats(ctx context.Context) (*ServiceStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return nil, err
	}

	out := &ServiceStats{
		PingMS: time.Since(start).Milliseconds(),
	}

	var statusName string
	var statusValue sql.NullString
	if err := s.db.QueryRowContext(ctx, `SHOW GLOBAL STATUS LIKE 'Uptime';`).Scan(&statusName, &statusValue); err == nil && statusValue.Valid {
		if v, err := time.ParseDuration(statusValue.String + "s"); err == nil {
			out.UptimeSeconds = int64(v.Seconds())
		}
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Vehicles WHERE retired_at IS NULL;`).Scan(&out.VehiclesTotal); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Drivers WHERE terminated_at IS NULL;`).Scan(&out.DriversTotal); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Tanks WHERE decommissioned_at IS NULL;`).Scan(&out.TanksTotal); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM MaintenanceRecords WHERE completed_at IS NULL;`).Scan(&out.MaintenanceOpen); err != nil {
		return nil, err
	}

	var events24h sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM SafetyEvents se
WHERE se.occurred_at >= UTC_TIMESTAMP() - INTERVAL 24 HOUR;
	`).Scan(&events24h); err != nil {
		return nil, err
	}
	if events24h.Valid {
		out.SafetyEvents24h = events24h.Int64
	}

	var readings24h sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM TankReadings tr
WHERE tr.recorded_at >= UTC_TIMESTAMP() - INTERVAL 24 HOUR;
	`).Scan(&readings24h); err != nil {
		return nil, err
	}
	if readings24h.Valid {
		out.TankReadings24h = readings24h.Int64
	}

	return out, nil
}
