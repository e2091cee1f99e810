package fleetdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"go-fleet-ops-dashboard/internal/config"
	fleetmap "go-fleet-ops-dashboard/internal/connectors/fleetmap"
)

// Store wraps fleet telemetry MySQL access for dashboard queries.
type Store struct {
	db                   *sql.DB
	queryTimeout         time.Duration
	staleAfter           time.Duration
	dbName               string
	hasCarrierFleetTable bool
	fleetMap             *fleetmap.Store
	carrierMappingMode   string
	carrierMappingPath   string
}

// NewStore creates a MySQL-backed fleet store.
func NewStore(cfg config.Config) (*Store, error) {
	db, err := sql.Open("mysql", cfg.FleetDSN())
	if err != nil {
		return nil, err
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FleetDBConnTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	hasMapping, err := detectCarrierFleetTable(ctx, db, cfg.FleetDBName)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var fm *fleetmap.Store
	mappingMode := "fleet_code_fallback"
	mappingPath := ""
	if path := strings.TrimSpace(cfg.FleetMapSQLitePath); path != "" {
		m, err := fleetmap.NewSQLiteStore(path)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		fm = m
		mappingMode = "sqlite_carrier_mappings"
		hasMapping = true
		mappingPath = path
	} else if hasMapping {
		mappingMode = "mysql_carrier_fleet_table"
	}

	return &Store{
		db:                   db,
		queryTimeout:         cfg.FleetDBQueryTimeout,
		staleAfter:           cfg.TankReadingStale,
		dbName:               cfg.FleetDBName,
		hasCarrierFleetTable: hasMapping,
		fleetMap:             fm,
		carrierMappingMode:   mappingMode,
		carrierMappingPath:   mappingPath,
	}, nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	if s.fleetMap != nil {
		_ = s.fleetMap.Close()
	}
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// HasCarrierFleetMapping reports whether a carrier-to-fleet mapping backend
// was detected.
func (s *Store) HasCarrierFleetMapping() bool {
	if s == nil {
		return false
	}
	return s.hasCarrierFleetTable
}

// CarrierMappingMode reports which mapping backend is active.
func (s *Store) CarrierMappingMode() string {
	if s == nil {
		return "fleet_code_fallback"
	}
	return s.carrierMappingMode
}

// CarrierMappingPath returns the configured sqlite path when the sqlite
// backend is active.
func (s *Store) CarrierMappingPath() string {
	if s == nil {
		return ""
	}
	return s.carrierMappingPath
}

// fleetFilterClause narrows a query to the fleets mapped to one carrier.
// The alias is the table alias exposing a fleet column.
func (s *Store) fleetFilterClause(ctx context.Context, alias, carrierID string) (string, []any, error) {
	trimmed := strings.TrimSpace(carrierID)
	if trimmed == "" || strings.EqualFold(trimmed, "all") || strings.EqualFold(trimmed, "default") {
		return "", nil, nil
	}

	if s.fleetMap != nil {
		fleets, err := s.fleetMap.FleetsForCarrier(ctx, trimmed)
		if err != nil {
			return "", nil, err
		}
		if len(fleets) == 0 {
			return "AND 1 = 0", nil, nil
		}
		placeholders := make([]string, 0, len(fleets))
		args := make([]any, 0, len(fleets))
		for _, f := range fleets {
			placeholders = append(placeholders, "?")
			args = append(args, f)
		}
		return fmt.Sprintf("AND %s.fleet IN (%s)", alias, strings.Join(placeholders, ",")), args, nil
	}

	if s.hasCarrierFleetTable {
		return fmt.Sprintf(`AND EXISTS (
    SELECT 1
    FROM CarrierFleets cf
    WHERE cf.carrier_id = ?
      AND cf.fleet_code = %s.fleet
  )`, alias), []any{trimmed}, nil
	}

	return fmt.Sprintf("AND %s.fleet = ?", alias), []any{trimmed}, nil
}

func detectCarrierFleetTable(ctx context.Context, db *sql.DB, dbName string) (bool, error) {
	const q = `
SELECT COUNT(*)
FROM information_schema.tables
WHERE table_schema = ?
  AND table_name = 'CarrierFleets';
`
	var count sql.NullInt64
	if err := db.QueryRowContext(ctx, q, dbName).Scan(&count); err != nil {
		return false, err
	}
	return count.Valid && count.Int64 > 0, nil
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func nullInt64Value(v sql.NullInt64) int64 {
	if !v.Valid {
		return 0
	}
	return v.Int64
}

func nullFloat64Ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullStringValue(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}
