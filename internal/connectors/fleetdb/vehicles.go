package fleetdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Vehicle is one fleet vehicle with compliance dates and open maintenance
// counters.
type Vehicle struct {
	VehicleID      string     `json:"vehicle_id"`
	Rego           string     `json:"rego"`
	Fleet          string     `json:"fleet"`
	Depot          string     `json:"depot"`
	Make           string     `json:"make"`
	Model          string     `json:"model"`
	OdometerKM     int64      `json:"odometer_km"`
	NextServiceDue *time.Time `json:"next_service_due"`
	RegoExpiry     *time.Time `json:"rego_expiry"`
	OpenItems      int64      `json:"open_items"`
}

// ListVehicles returns vehicles with their next service due date and open
// maintenance item count, optionally narrowed to one carrier's fleets.
func (s *Store) ListVehicles(ctx context.Context, carrierID string, limit int) ([]Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	filterClause, filterArgs, err := s.fleetFilterClause(ctx, "v", carrierID)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
SELECT
  v.vehicle_id,
  v.rego,
  v.fleet,
  COALESCE(v.depot, '') AS depot,
  COALESCE(v.make, '') AS make,
  COALESCE(v.model, '') AS model,
  COALESCE(v.odometer_km, 0) AS odometer_km,
  mr.next_service_due,
  v.rego_expiry,
  COALESCE(mr.open_items, 0) AS open_items
FROM Vehicles v
LEFT JOIN (
  SELECT
    m.vehicle_id,
    MIN(CASE WHEN m.completed_at IS NULL THEN m.due_date END) AS next_service_due,
    SUM(CASE WHEN m.completed_at IS NULL THEN 1 ELSE 0 END) AS open_items
  FROM MaintenanceRecords m
  GROUP BY m.vehicle_id
) mr
  ON mr.vehicle_id = v.vehicle_id
WHERE v.retired_at IS NULL
  %s
ORDER BY v.rego ASC
LIMIT ?;
`, filterClause)

	args := append(filterArgs, limit)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Vehicle, 0, limit)
	for rows.Next() {
		var (
			item           Vehicle
			nextServiceDue sql.NullTime
			regoExpiry     sql.NullTime
			openItems      sql.NullInt64
		)
		if err := rows.Scan(
			&item.VehicleID,
			&item.Rego,
			&item.Fleet,
			&item.Depot,
			&item.Make,
			&item.Model,
			&item.OdometerKM,
			&nextServiceDue,
			&regoExpiry,
			&openItems,
		); err != nil {
			return nil, err
		}

		item.NextServiceDue = nullTimePtr(nextServiceDue)
		item.RegoExpiry = nullTimePtr(regoExpiry)
		item.OpenItems = nullInt64Value(openItems)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// MaintenanceItem is one scheduled or completed work order.
type MaintenanceItem struct {
	ItemID      int64      `json:"item_id"`
	VehicleID   string     `json:"vehicle_id"`
	Rego        string     `json:"rego"`
	Fleet       string     `json:"fleet"`
	WorkType    string     `json:"work_type"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	CostDollars *float64   `json:"cost_dollars"`
}

// ListMaintenance returns maintenance work orders newest-due first,
// optionally limited to open items or one completion month.
func (s *Store) ListMaintenance(ctx context.Context, carrierID string, openOnly bool, month *time.Time, limit, offset int) ([]MaintenanceItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	filterClause, filterArgs, err := s.fleetFilterClause(ctx, "v", carrierID)
	if err != nil {
		return nil, err
	}

	whereClause := "WHERE 1 = 1"
	args := make([]any, 0, 6)
	if openOnly {
		whereClause += " AND m.completed_at IS NULL"
	}
	if month != nil {
		start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		whereClause += " AND m.completed_at >= ? AND m.completed_at < ?"
		args = append(args, start, end)
	}

	q := fmt.Sprintf(`
SELECT
  m.item_id,
  m.vehicle_id,
  COALESCE(v.rego, m.vehicle_id) AS rego,
  COALESCE(v.fleet, '') AS fleet,
  m.work_type,
  COALESCE(m.description, '') AS description,
  m.due_date,
  m.completed_at,
  m.cost_dollars
FROM MaintenanceRecords m
LEFT JOIN Vehicles v
  ON v.vehicle_id = m.vehicle_id
%s
  %s
ORDER BY COALESCE(m.due_date, m.completed_at) ASC, m.item_id ASC
LIMIT ? OFFSET ?;
`, whereClause, filterClause)

	args = append(args, filterArgs...)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]MaintenanceItem, 0, limit)
	for rows.Next() {
		var (
			item        MaintenanceItem
			dueDate     sql.NullTime
			completedAt sql.NullTime
			cost        sql.NullFloat64
		)
		if err := rows.Scan(
			&item.ItemID,
			&item.VehicleID,
			&item.Rego,
			&item.Fleet,
			&item.WorkType,
			&item.Description,
			&dueDate,
			&completedAt,
			&cost,
		); err != nil {
			return nil, err
		}

		item.DueDate = nullTimePtr(dueDate)
		item.CompletedAt = nullTimePtr(completedAt)
		item.CostDollars = nullFloat64Ptr(cost)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
