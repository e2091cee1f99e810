package fleetdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Tank is one fuel tank row with its latest gauge reading folded in.
type Tank struct {
	TankID         string     `json:"tank_id"`
	Name           string     `json:"name"`
	Depot          string     `json:"depot"`
	Fleet          string     `json:"fleet"`
	Product        string     `json:"product"`
	CapacityLitres float64    `json:"capacity_litres"`
	CurrentLitres  float64    `json:"current_litres"`
	PercentFull    *float64   `json:"percent_full"`
	LastReadingAt  *time.Time `json:"last_reading_at"`
	Stale          bool       `json:"stale"`
}

// ListTanks returns tanks with their newest reading, optionally narrowed to
// one carrier's fleets.
func (s *Store) ListTanks(ctx context.Context, carrierID string, limit int) ([]Tank, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	filterClause, filterArgs, err := s.fleetFilterClause(ctx, "t", carrierID)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
SELECT
  t.tank_id,
  t.name,
  t.depot,
  t.fleet,
  COALESCE(t.product, '') AS product,
  COALESCE(t.capacity_litres, 0) AS capacity_litres,
  COALESCE(lr.reading_litres, 0) AS current_litres,
  lr.recorded_at AS last_reading_at
FROM Tanks t
LEFT JOIN (
  SELECT
    r.tank_id,
    r.reading_litres,
    r.recorded_at
  FROM TankReadings r
  JOIN (
    SELECT tank_id, MAX(recorded_at) AS max_recorded_at
    FROM TankReadings
    GROUP BY tank_id
  ) latest
    ON latest.tank_id = r.tank_id
    AND latest.max_recorded_at = r.recorded_at
) lr
  ON lr.tank_id = t.tank_id
WHERE t.decommissioned_at IS NULL
  %s
ORDER BY t.depot ASC, t.name ASC
LIMIT ?;
`, filterClause)

	args := append(filterArgs, limit)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().UTC()
	items := make([]Tank, 0, limit)
	for rows.Next() {
		var (
			item          Tank
			currentLitres sql.NullFloat64
			lastReading   sql.NullTime
		)
		if err := rows.Scan(
			&item.TankID,
			&item.Name,
			&item.Depot,
			&item.Fleet,
			&item.Product,
			&item.CapacityLitres,
			&currentLitres,
			&lastReading,
		); err != nil {
			return nil, err
		}

		if currentLitres.Valid {
			item.CurrentLitres = currentLitres.Float64
		}
		item.LastReadingAt = nullTimePtr(lastReading)
		if item.CapacityLitres > 0 {
			pct := (item.CurrentLitres / item.CapacityLitres) * 100
			item.PercentFull = &pct
		}
		if item.LastReadingAt != nil {
			item.Stale = now.Sub(*item.LastReadingAt) > s.staleAfter
		} else {
			item.Stale = true
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// TankLevelPoint is a day bucket of average fill percent for charting.
type TankLevelPoint struct {
	Date       string  `json:"date"`
	AvgPercent float64 `json:"avg_percent"`
	MinPercent float64 `json:"min_percent"`
	Readings   int64   `json:"readings"`
}

// GetTankLevelHistory returns per-day fill statistics for one tank over a
// trailing window.
func (s *Store) GetTankLevelHistory(ctx context.Context, tankID string, since time.Time) ([]TankLevelPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	const q = `
SELECT
  DATE(r.recorded_at) AS d,
  COALESCE(AVG(r.reading_litres / NULLIF(t.capacity_litres, 0) * 100), 0) AS avg_percent,
  COALESCE(MIN(r.reading_litres / NULLIF(t.capacity_litres, 0) * 100), 0) AS min_percent,
  COUNT(*) AS readings
FROM TankReadings r
JOIN Tanks t
  ON t.tank_id = r.tank_id
WHERE r.tank_id = ?
  AND r.recorded_at >= ?
GROUP BY DATE(r.recorded_at)
ORDER BY DATE(r.recorded_at);
`

	rows, err := s.db.QueryContext(ctx, q, tankID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := make([]TankLevelPoint, 0)
	for rows.Next() {
		var (
			day      time.Time
			avg, min sql.NullFloat64
			readings sql.NullInt64
		)
		if err := rows.Scan(&day, &avg, &min, &readings); err != nil {
			return nil, err
		}
		series = append(series, TankLevelPoint{
			Date:       day.Format("2006-01-02"),
			AvgPercent: avg.Float64,
			MinPercent: min.Float64,
			Readings:   nullInt64Value(readings),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return series, nil
}
