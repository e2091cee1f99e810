package fleetdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Driver is one driver row with safety event counters aggregated over the
// telematics lookback window. Event counts default to 0 when the driver has
// no events in the window.
type Driver struct {
	DriverID       string     `json:"driver_id"`
	Name           string     `json:"name"`
	Fleet          string     `json:"fleet"`
	Depot          string     `json:"depot"`
	Active         bool       `json:"active"`
	SafetyScore    *float64   `json:"safety_score"`
	HighRiskEvents int64      `json:"high_risk_events"`
	HarshBraking   int64      `json:"harsh_braking"`
	Distraction    int64      `json:"distraction"`
	Fatigue        int64      `json:"fatigue"`
	Speeding       int64      `json:"speeding"`
	LastEventAt    *time.Time `json:"last_event_at"`
}

// SecondaryEvents is the combined non-high-risk count risk tiers key off.
func (d Driver) SecondaryEvents() int64 {
	return d.HarshBraking + d.Distraction + d.Fatigue + d.Speeding
}

// ListDrivers returns drivers with event counters since the given time,
// optionally narrowed to one carrier's fleets.
func (s *Store) ListDrivers(ctx context.Context, carrierID string, eventsSince time.Time, limit int) ([]Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	filterClause, filterArgs, err := s.fleetFilterClause(ctx, "d", carrierID)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
SELECT
  d.driver_id,
  d.name,
  d.fleet,
  COALESCE(d.depot, '') AS depot,
  d.active,
  d.safety_score,
  COALESCE(ev.high_risk, 0) AS high_risk,
  COALESCE(ev.harsh_braking, 0) AS harsh_braking,
  COALESCE(ev.distraction, 0) AS distraction,
  COALESCE(ev.fatigue, 0) AS fatigue,
  COALESCE(ev.speeding, 0) AS speeding,
  ev.last_event_at
FROM Drivers d
LEFT JOIN (
  SELECT
    e.driver_id,
    SUM(CASE WHEN e.event_type = 'high_risk' THEN 1 ELSE 0 END) AS high_risk,
    SUM(CASE WHEN e.event_type = 'harsh_braking' THEN 1 ELSE 0 END) AS harsh_braking,
    SUM(CASE WHEN e.event_type = 'distraction' THEN 1 ELSE 0 END) AS distraction,
    SUM(CASE WHEN e.event_type = 'fatigue' THEN 1 ELSE 0 END) AS fatigue,
    SUM(CASE WHEN e.event_type = 'speeding' THEN 1 ELSE 0 END) AS speeding,
    MAX(e.occurred_at) AS last_event_at
  FROM SafetyEvents e
  WHERE e.occurred_at >= ?
  GROUP BY e.driver_id
) ev
  ON ev.driver_id = d.driver_id
WHERE 1 = 1
  %s
ORDER BY d.name ASC
LIMIT ?;
`, filterClause)

	args := append([]any{eventsSince}, filterArgs...)
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Driver, 0, limit)
	for rows.Next() {
		var (
			item        Driver
			depot       sql.NullString
			score       sql.NullFloat64
			lastEventAt sql.NullTime
		)
		if err := rows.Scan(
			&item.DriverID,
			&item.Name,
			&item.Fleet,
			&depot,
			&item.Active,
			&score,
			&item.HighRiskEvents,
			&item.HarshBraking,
			&item.Distraction,
			&item.Fatigue,
			&item.Speeding,
			&lastEventAt,
		); err != nil {
			return nil, err
		}

		item.Depot = nullStringValue(depot)
		item.SafetyScore = nullFloat64Ptr(score)
		item.LastEventAt = nullTimePtr(lastEventAt)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// SafetyEvent is one raw telematics event for a driver detail view.
type SafetyEvent struct {
	EventID    string     `json:"event_id"`
	DriverID   string     `json:"driver_id"`
	EventType  string     `json:"event_type"`
	Provider   string     `json:"provider"`
	VehicleID  string     `json:"vehicle_id"`
	OccurredAt *time.Time `json:"occurred_at"`
	Notes      string     `json:"notes"`
}

// ListDriverEvents returns newest-first raw events for one driver.
func (s *Store) ListDriverEvents(ctx context.Context, driverID string, since time.Time, limit int) ([]SafetyEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	const q = `
SELECT
  e.event_id,
  e.driver_id,
  e.event_type,
  COALESCE(e.provider, '') AS provider,
  COALESCE(e.vehicle_id, '') AS vehicle_id,
  e.occurred_at,
  COALESCE(e.notes, '') AS notes
FROM SafetyEvents e
WHERE e.driver_id = ?
  AND e.occurred_at >= ?
ORDER BY e.occurred_at DESC
LIMIT ?;
`

	rows, err := s.db.QueryContext(ctx, q, driverID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]SafetyEvent, 0, limit)
	for rows.Next() {
		var (
			item       SafetyEvent
			occurredAt sql.NullTime
		)
		if err := rows.Scan(
			&item.EventID,
			&item.DriverID,
			&item.EventType,
			&item.Provider,
			&item.VehicleID,
			&occurredAt,
			&item.Notes,
		); err != nil {
			return nil, err
		}
		item.OccurredAt = nullTimePtr(occurredAt)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
