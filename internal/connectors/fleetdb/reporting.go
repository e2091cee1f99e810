package fleetdb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"
)

// DailyEventPoint is an aggregated day bucket for safety trend charts.
type DailyEventPoint struct {
	Date      string `json:"date"`
	HighRisk  int64  `json:"high_risk"`
	Secondary int64  `json:"secondary"`
}

// FleetSummary contains KPI totals and a chart-ready event timeseries for
// one carrier scope and month.
type FleetSummary struct {
	Month      string            `json:"month"`
	CarrierID  string            `json:"carrier_id"`
	KPIs       map[string]any    `json:"kpis"`
	Timeseries []DailyEventPoint `json:"timeseries"`
}

// GetFleetSummary builds the fleet report from Drivers/Vehicles/SafetyEvents
// and MaintenanceRecords.
func (s *Store) GetFleetSummary(ctx context.Context, carrierID string, month time.Time) (*FleetSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	driverClause, driverArgs, err := s.fleetFilterClause(ctx, "d", carrierID)
	if err != nil {
		return nil, err
	}
	vehicleClause, vehicleArgs, err := s.fleetFilterClause(ctx, "v", carrierID)
	if err != nil {
		return nil, err
	}

	driversQuery := fmt.Sprintf(`
SELECT
  COUNT(*) AS drivers_total,
  SUM(CASE WHEN d.active = 1 THEN 1 ELSE 0 END) AS drivers_active,
  AVG(d.safety_score) AS avg_safety_score
FROM Drivers d
WHERE 1 = 1
  %s;
`, driverClause)

	var driversTotal, driversActive sql.NullInt64
	var avgScore sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, driversQuery, driverArgs...).Scan(&driversTotal, &driversActive, &avgScore); err != nil {
		return nil, err
	}

	eventsQuery := fmt.Sprintf(`
SELECT
  SUM(CASE WHEN e.event_type = 'high_risk' THEN 1 ELSE 0 END) AS high_risk,
  SUM(CASE WHEN e.event_type <> 'high_risk' THEN 1 ELSE 0 END) AS secondary
FROM SafetyEvents e
JOIN Drivers d
  ON d.driver_id = e.driver_id
WHERE e.occurred_at >= ?
  AND e.occurred_at < ?
  %s;
`, driverClause)

	eventsArgs := append([]any{start, end}, driverArgs...)
	var highRisk, secondary sql.NullInt64
	if err := s.db.QueryRowContext(ctx, eventsQuery, eventsArgs...).Scan(&highRisk, &secondary); err != nil {
		return nil, err
	}

	vehiclesQuery := fmt.Sprintf(`
SELECT
  COUNT(*) AS vehicles_total,
  COALESCE(SUM(mr.open_items), 0) AS open_items,
  COALESCE(SUM(mr.overdue_items), 0) AS overdue_items
FROM Vehicles v
LEFT JOIN (
  SELECT
    m.vehicle_id,
    SUM(CASE WHEN m.completed_at IS NULL THEN 1 ELSE 0 END) AS open_items,
    SUM(CASE WHEN m.completed_at IS NULL AND m.due_date < ? THEN 1 ELSE 0 END) AS overdue_items
  FROM MaintenanceRecords m
  GROUP BY m.vehicle_id
) mr
  ON mr.vehicle_id = v.vehicle_id
WHERE v.retired_at IS NULL
  %s;
`, vehicleClause)

	vehiclesArgs := append([]any{time.Now().UTC()}, vehicleArgs...)
	var vehiclesTotal, openItems, overdueItems sql.NullInt64
	if err := s.db.QueryRowContext(ctx, vehiclesQuery, vehiclesArgs...).Scan(&vehiclesTotal, &openItems, &overdueItems); err != nil {
		return nil, err
	}

	timeseriesQuery := fmt.Sprintf(`
SELECT
  DATE(e.occurred_at) AS d,
  SUM(CASE WHEN e.event_type = 'high_risk' THEN 1 ELSE 0 END) AS high_risk,
  SUM(CASE WHEN e.event_type <> 'high_risk' THEN 1 ELSE 0 END) AS secondary
FROM SafetyEvents e
JOIN Drivers d
  ON d.driver_id = e.driver_id
WHERE e.occurred_at >= ?
  AND e.occurred_at < ?
  %s
GROUP BY DATE(e.occurred_at)
ORDER BY DATE(e.occurred_at);
`, driverClause)

	timeseriesArgs := append([]any{start, end}, driverArgs...)
	rows, err := s.db.QueryContext(ctx, timeseriesQuery, timeseriesArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := make([]DailyEventPoint, 0)
	for rows.Next() {
		var (
			day       time.Time
			high, sec sql.NullInt64
		)
		if err := rows.Scan(&day, &high, &sec); err != nil {
			return nil, err
		}
		series = append(series, DailyEventPoint{
			Date:      day.Format("2006-01-02"),
			HighRisk:  nullInt64Value(high),
			Secondary: nullInt64Value(sec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	eventsPerActiveDriver := 0.0
	if nullInt64Value(driversActive) > 0 {
		total := float64(nullInt64Value(highRisk) + nullInt64Value(secondary))
		eventsPerActiveDriver = round2(total / float64(nullInt64Value(driversActive)))
	}

	report := &FleetSummary{
		Month:     start.Format("2006-01"),
		CarrierID: carrierID,
		KPIs: map[string]any{
			"drivers_total":            nullInt64Value(driversTotal),
			"drivers_active":           nullInt64Value(driversActive),
			"avg_safety_score":         round2(avgScore.Float64),
			"high_risk_events":         nullInt64Value(highRisk),
			"secondary_events":         nullInt64Value(secondary),
			"events_per_active_driver": eventsPerActiveDriver,
			"vehicles_total":           nullInt64Value(vehiclesTotal),
			"maintenance_open":         nullInt64Value(openItems),
			"maintenance_overdue":      nullInt64Value(overdueItems),
		},
		Timeseries: series,
	}

	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
