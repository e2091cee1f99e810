package paydb

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"go-fleet-ops-dashboard/internal/config"
)

// Store wraps captive-payments MySQL access.
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
	dbName       string
}

// ServiceStats reports basic payments DB health/counters.
type ServiceStats struct {
	PingMS            int64            `json:"ping_ms"`
	UptimeSeconds     int64            `json:"uptime_seconds"`
	DeliveriesTotal   int64            `json:"deliveries_total"`
	DeliveryStatuses  map[string]int64 `json:"delivery_statuses"`
	CarriersTotal     int64            `json:"carriers_total"`
	Deliveries24h     int64            `json:"deliveries_24h"`
	LitresDelivered7d float64          `json:"litres_delivered_7d"`
}

// Delivery is one captive-payments fuel delivery row.
type Delivery struct {
	ID            int64      `json:"id"`
	DocketNumber  string     `json:"docket_number"`
	Carrier       string     `json:"carrier"`
	Fleet         string     `json:"fleet"`
	Depot         string     `json:"depot"`
	Product       string     `json:"product"`
	Status        string     `json:"status"`
	VolumeLitres  float64    `json:"volume_litres"`
	AmountDollars *float64   `json:"amount_dollars"`
	DeliveredAt   *time.Time `json:"delivered_at"`
}

// MonthlyVolumePoint is one month bucket in a delivery volume series.
type MonthlyVolumePoint struct {
	Month        string  `json:"month"`
	Deliveries   int64   `json:"deliveries"`
	VolumeLitres float64 `json:"volume_litres"`
}

// CarrierVolume is total delivered volume for one carrier across a window.
type CarrierVolume struct {
	Carrier      string  `json:"carrier"`
	Deliveries   int64   `json:"deliveries"`
	VolumeLitres float64 `json:"volume_litres"`
}

// ReportStats returns payments counters useful for monthly reporting context.
type ReportStats struct {
	Month                string           `json:"month"`
	DeliveriesMonth      int64            `json:"deliveries_month"`
	LitresDeliveredMonth float64          `json:"litres_delivered_month"`
	DeliveriesTotal      int64            `json:"deliveries_total"`
	DeliveryStatuses     map[string]int64 `json:"delivery_statuses"`
}

func NewStore(cfg config.Config) (*Store, error) {
	db, err := sql.Open("mysql", cfg.PayDSN())
	if err != nil {
		return nil, err
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PayDBConnTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, queryTimeout: cfg.PayDBQueryTimeout, dbName: cfg.PayDBName}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ServiceStats(ctx context.Context) (*ServiceStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return nil, err
	}

	out := &ServiceStats{
		PingMS:           time.Since(start).Milliseconds(),
		DeliveryStatuses: map[string]int64{},
	}

	var statusName string
	var statusValue sql.NullString
	if err := s.db.QueryRowContext(ctx, `SHOW GLOBAL STATUS LIKE 'Uptime';`).Scan(&statusName, &statusValue); err == nil && statusValue.Valid {
		if v, err := time.ParseDuration(statusValue.String + "s"); err == nil {
			out.UptimeSeconds = int64(v.Seconds())
		}
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Deliveries;`).Scan(&out.DeliveriesTotal); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT carrier) FROM Deliveries;`).Scan(&out.CarriersTotal); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM Deliveries
WHERE delivered_at >= UTC_TIMESTAMP() - INTERVAL 24 HOUR;
`).Scan(&out.Deliveries24h); err != nil {
		return nil, err
	}

	var litres7d sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(volume_litres), 0)
FROM Deliveries
WHERE delivered_at >= UTC_TIMESTAMP() - INTERVAL 7 DAY;
`).Scan(&litres7d); err != nil {
		return nil, err
	}
	if litres7d.Valid {
		out.LitresDelivered7d = litres7d.Float64
	}

	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE(status, ''), COUNT(*) FROM Deliveries GROUP BY status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out.DeliveryStatuses[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// ListDeliveries returns recent deliveries, newest first, optionally narrowed
// to one carrier.
func (s *Store) ListDeliveries(ctx context.Context, carrier string, since time.Time, limit int) ([]Delivery, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	where := []string{"d.delivered_at >= ?"}
	args := []any{since}

	trimmed := strings.TrimSpace(carrier)
	if trimmed != "" && !strings.EqualFold(trimmed, "all") {
		where = append(where, "d.carrier = ?")
		args = append(args, trimmed)
	}
	args = append(args, limit)

	q := `
SELECT
  d.id,
  COALESCE(d.docket_number, ''),
  COALESCE(d.carrier, ''),
  COALESCE(d.fleet, ''),
  COALESCE(d.depot, ''),
  COALESCE(d.product, ''),
  COALESCE(d.status, ''),
  COALESCE(d.volume_litres, 0),
  d.amount_dollars,
  d.delivered_at
FROM Deliveries d
WHERE ` + strings.Join(where, "\n  AND ") + `
ORDER BY d.delivered_at DESC
LIMIT ?;
`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Delivery, 0, limit)
	for rows.Next() {
		var (
			item        Delivery
			amount      sql.NullFloat64
			deliveredAt sql.NullTime
		)
		if err := rows.Scan(
			&item.ID,
			&item.DocketNumber,
			&item.Carrier,
			&item.Fleet,
			&item.Depot,
			&item.Product,
			&item.Status,
			&item.VolumeLitres,
			&amount,
			&deliveredAt,
		); err != nil {
			return nil, err
		}
		item.AmountDollars = nullFloat64Ptr(amount)
		item.DeliveredAt = nullTimePtr(deliveredAt)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MonthlyVolumes returns month-bucketed delivery counts and litres for the
// last n months, oldest first.
func (s *Store) MonthlyVolumes(ctx context.Context, carrier string, months int) ([]MonthlyVolumePoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if months < 1 {
		months = 1
	}
	since := time.Now().UTC().AddDate(0, -months, 0)

	where := []string{"d.delivered_at >= ?"}
	args := []any{since}

	trimmed := strings.TrimSpace(carrier)
	if trimmed != "" && !strings.EqualFold(trimmed, "all") {
		where = append(where, "d.carrier = ?")
		args = append(args, trimmed)
	}

	q := `
SELECT
  DATE_FORMAT(d.delivered_at, '%Y-%m') AS month,
  COUNT(*) AS deliveries,
  COALESCE(SUM(d.volume_litres), 0) AS litres
FROM Deliveries d
WHERE ` + strings.Join(where, "\n  AND ") + `
GROUP BY DATE_FORMAT(d.delivered_at, '%Y-%m')
ORDER BY month ASC;
`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MonthlyVolumePoint, 0, months)
	for rows.Next() {
		var item MonthlyVolumePoint
		if err := rows.Scan(&item.Month, &item.Deliveries, &item.VolumeLitres); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CarrierVolumes returns total delivered volume per carrier since a cutoff,
// largest volume first.
func (s *Store) CarrierVolumes(ctx context.Context, since time.Time, limit int) ([]CarrierVolume, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	const q = `
SELECT
  COALESCE(d.carrier, ''),
  COUNT(*) AS deliveries,
  COALESCE(SUM(d.volume_litres), 0) AS litres
FROM Deliveries d
WHERE d.delivered_at >= ?
GROUP BY d.carrier
ORDER BY litres DESC
LIMIT ?;
`

	rows, err := s.db.QueryContext(ctx, q, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CarrierVolume, 0, limit)
	for rows.Next() {
		var item CarrierVolume
		if err := rows.Scan(&item.Carrier, &item.Deliveries, &item.VolumeLitres); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ReportStats(ctx context.Context, month time.Time) (*ReportStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	out := &ReportStats{
		Month:            start.Format("2006-01"),
		DeliveryStatuses: map[string]int64{},
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Deliveries;`).Scan(&out.DeliveriesTotal); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(volume_litres), 0)
FROM Deliveries
WHERE delivered_at >= ?
  AND delivered_at < ?;
`, start, end).Scan(&out.DeliveriesMonth, &out.LitresDeliveredMonth); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE(status, ''), COUNT(*) FROM Deliveries GROUP BY status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out.DeliveryStatuses[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func nullFloat64Ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
