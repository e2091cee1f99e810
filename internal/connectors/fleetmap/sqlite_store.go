package fleetmap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Summary represents one carrier and number of mapped fleets.
type Summary struct {
	CarrierID  string `json:"carrier_id"`
	FleetCount int64  `json:"fleet_count"`
}

// Store manages carrier/fleet mappings and saved views in SQLite.
type Store struct {
	db *sql.DB
}

// SavedView is an app-owned persisted table configuration (filters, sort,
// page size) for one dashboard page.
type SavedView struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scope       string     `json:"scope"`
	ConfigJSON  string     `json:"config_json"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

var viewScopes = map[string]struct{}{
	"tanks":       {},
	"drivers":     {},
	"vehicles":    {},
	"maintenance": {},
	"deliveries":  {},
}

func NewSQLiteStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS carrier_fleets (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  carrier_id TEXT NOT NULL,
  fleet_code TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(carrier_id, fleet_code)
);
`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_cf_carrier_id ON carrier_fleets(carrier_id);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_cf_fleet ON carrier_fleets(fleet_code);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS saved_views (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  scope TEXT NOT NULL DEFAULT 'drivers',
  config_json TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_sv_scope ON saved_views(scope);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ListCarriers(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT carrier_id, COUNT(*)
FROM carrier_fleets
GROUP BY carrier_id
ORDER BY carrier_id
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Summary, 0, limit)
	for rows.Next() {
		var item Summary
		if err := rows.Scan(&item.CarrierID, &item.FleetCount); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) FleetsForCarrier(ctx context.Context, carrierID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT fleet_code
FROM carrier_fleets
WHERE carrier_id = ?
ORDER BY fleet_code;
`, strings.TrimSpace(carrierID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		code = strings.TrimSpace(code)
		if code != "" {
			out = append(out, code)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateMapping(ctx context.Context, carrierID, fleetCode string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO carrier_fleets (carrier_id, fleet_code)
VALUES (?, ?)
ON CONFLICT(carrier_id, fleet_code) DO NOTHING;
`, strings.TrimSpace(carrierID), strings.TrimSpace(fleetCode))
	return err
}

func (s *Store) ReplaceMappings(ctx context.Context, carrierID string, fleetCodes []string) (int, error) {
	carrierID = strings.TrimSpace(carrierID)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM carrier_fleets WHERE carrier_id = ?`, carrierID); err != nil {
		return 0, err
	}

	norm := normalizeFleetCodes(fleetCodes)
	for _, code := range norm {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO carrier_fleets (carrier_id, fleet_code)
VALUES (?, ?)
ON CONFLICT(carrier_id, fleet_code) DO NOTHING;
`, carrierID, code); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(norm), nil
}

func (s *Store) DeleteMapping(ctx context.Context, carrierID, fleetCode string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM carrier_fleets WHERE carrier_id = ? AND fleet_code = ?`, strings.TrimSpace(carrierID), strings.TrimSpace(fleetCode))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) DeleteAllMappings(ctx context.Context, carrierID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM carrier_fleets WHERE carrier_id = ?`, strings.TrimSpace(carrierID))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func normalizeFleetCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

func (s *Store) ListSavedViews(ctx context.Context, scope string, limit int) ([]SavedView, error) {
	scope = strings.ToLower(strings.TrimSpace(scope))

	q := `
SELECT id, name, description, scope, config_json, created_at, updated_at
FROM saved_views
ORDER BY name ASC
LIMIT ?;
`
	args := []any{limit}
	if scope != "" && scope != "all" {
		q = `
SELECT id, name, description, scope, config_json, created_at, updated_at
FROM saved_views
WHERE scope = ?
ORDER BY name ASC
LIMIT ?;
`
		args = []any{scope, limit}
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SavedView, 0, limit)
	for rows.Next() {
		var (
			item      SavedView
			createdAt sql.NullTime
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Scope, &item.ConfigJSON, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			t := createdAt.Time.UTC()
			item.CreatedAt = &t
		}
		if updatedAt.Valid {
			t := updatedAt.Time.UTC()
			item.UpdatedAt = &t
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetSavedView(ctx context.Context, id int64) (*SavedView, error) {
	var (
		item      SavedView
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, name, description, scope, config_json, created_at, updated_at
FROM saved_views
WHERE id = ?;
`, id).Scan(&item.ID, &item.Name, &item.Description, &item.Scope, &item.ConfigJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if createdAt.Valid {
		t := createdAt.Time.UTC()
		item.CreatedAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		item.UpdatedAt = &t
	}
	return &item, nil
}

func (s *Store) UpsertSavedView(ctx context.Context, name, description, scope, configJSON string) (int64, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	scope = strings.ToLower(strings.TrimSpace(scope))
	configJSON = strings.TrimSpace(configJSON)
	if name == "" {
		return 0, fmt.Errorf("view name is required")
	}
	if scope == "" {
		scope = "drivers"
	}
	if _, ok := viewScopes[scope]; !ok {
		return 0, fmt.Errorf("unsupported scope: %s", scope)
	}
	if configJSON == "" {
		return 0, fmt.Errorf("config_json is required")
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO saved_views (name, description, scope, config_json, created_at, updated_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT(name) DO UPDATE SET
  description = excluded.description,
  scope = excluded.scope,
  config_json = excluded.config_json,
  updated_at = CURRENT_TIMESTAMP;
`, name, description, scope, configJSON)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err == nil && id > 0 {
		return id, nil
	}

	var existingID int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM saved_views WHERE name = ?`, name).Scan(&existingID); err != nil {
		return 0, err
	}
	return existingID, nil
}

func (s *Store) DeleteSavedView(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_views WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
