package fleetdb

import (
	"context"
	"database/sql"
	"strings"
)

// CarrierSummary represents one carrier and number of mapped fleets.
type CarrierSummary struct {
	CarrierID  string `json:"carrier_id"`
	FleetCount int64  `json:"fleet_count"`
}

// CarrierMappings holds all fleet codes mapped to a carrier.
type CarrierMappings struct {
	CarrierID string   `json:"carrier_id"`
	Fleets    []string `json:"fleets"`
}

// ListCarriers returns mapped carriers from the active mapping backend.
func (s *Store) ListCarriers(ctx context.Context, limit int) ([]CarrierSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if s.fleetMap != nil {
		items, err := s.fleetMap.ListCarriers(ctx, limit)
		if err != nil {
			return nil, err
		}
		out := make([]CarrierSummary, 0, len(items))
		for _, item := range items {
			out = append(out, CarrierSummary{
				CarrierID:  item.CarrierID,
				FleetCount: item.FleetCount,
			})
		}
		return out, nil
	}

	if s.hasCarrierFleetTable {
		const q = `
SELECT
  cf.carrier_id,
  COUNT(*) AS fleet_count
FROM CarrierFleets cf
GROUP BY cf.carrier_id
ORDER BY cf.carrier_id ASC
LIMIT ?;
`
		rows, err := s.db.QueryContext(ctx, q, limit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		items := make([]CarrierSummary, 0, limit)
		for rows.Next() {
			var item CarrierSummary
			if err := rows.Scan(&item.CarrierID, &item.FleetCount); err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return items, nil
	}

	// Without a mapping backend each distinct fleet code is its own carrier.
	const q = `
SELECT DISTINCT v.fleet
FROM Vehicles v
WHERE v.fleet IS NOT NULL AND v.fleet <> ''
ORDER BY v.fleet ASC
LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]CarrierSummary, 0, limit)
	for rows.Next() {
		var fleet string
		if err := rows.Scan(&fleet); err != nil {
			return nil, err
		}
		items = append(items, CarrierSummary{CarrierID: fleet, FleetCount: 1})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetCarrierMappings returns all fleet codes mapped to a carrier.
func (s *Store) GetCarrierMappings(ctx context.Context, carrierID string) (*CarrierMappings, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	trimmed := strings.TrimSpace(carrierID)
	if trimmed == "" {
		return &CarrierMappings{CarrierID: "", Fleets: []string{}}, nil
	}

	if s.fleetMap != nil {
		fleets, err := s.fleetMap.FleetsForCarrier(ctx, trimmed)
		if err != nil {
			return nil, err
		}
		return &CarrierMappings{CarrierID: trimmed, Fleets: fleets}, nil
	}

	if !s.hasCarrierFleetTable {
		return &CarrierMappings{CarrierID: trimmed, Fleets: []string{trimmed}}, nil
	}

	const q = `
SELECT cf.fleet_code
FROM CarrierFleets cf
WHERE cf.carrier_id = ?
ORDER BY cf.fleet_code ASC;
`
	rows, err := s.db.QueryContext(ctx, q, trimmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fleets := make([]string, 0)
	for rows.Next() {
		var code sql.NullString
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		if code.Valid && strings.TrimSpace(code.String) != "" {
			fleets = append(fleets, code.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &CarrierMappings{CarrierID: trimmed, Fleets: fleets}, nil
}

// CreateCarrierMapping inserts a single carrier/fleet mapping if not present.
func (s *Store) CreateCarrierMapping(ctx context.Context, carrierID, fleetCode string) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	carrierID = strings.TrimSpace(carrierID)
	fleetCode = strings.TrimSpace(fleetCode)

	if s.fleetMap != nil {
		return s.fleetMap.CreateMapping(ctx, carrierID, fleetCode)
	}

	const q = `
INSERT INTO CarrierFleets (carrier_id, fleet_code)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE fleet_code = VALUES(fleet_code);
`
	_, err := s.db.ExecContext(ctx, q, carrierID, fleetCode)
	return err
}

// ReplaceCarrierMappings replaces all fleets for a carrier in one transaction.
func (s *Store) ReplaceCarrierMappings(ctx context.Context, carrierID string, fleetCodes []string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	carrierID = strings.TrimSpace(carrierID)
	norm := normalizeFleetCodes(fleetCodes)

	if s.fleetMap != nil {
		return s.fleetMap.ReplaceMappings(ctx, carrierID, norm)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM CarrierFleets WHERE carrier_id = ?`, carrierID); err != nil {
		return 0, err
	}

	if len(norm) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO CarrierFleets (carrier_id, fleet_code) VALUES (?, ?)`)
		if err != nil {
			return 0, err
		}
		defer stmt.Close()

		for _, code := range norm {
			if _, err := stmt.ExecContext(ctx, carrierID, code); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return len(norm), nil
}

// DeleteCarrierMapping deletes one fleet mapping for a carrier.
func (s *Store) DeleteCarrierMapping(ctx context.Context, carrierID, fleetCode string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	carrierID = strings.TrimSpace(carrierID)
	fleetCode = strings.TrimSpace(fleetCode)

	if s.fleetMap != nil {
		return s.fleetMap.DeleteMapping(ctx, carrierID, fleetCode)
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM CarrierFleets WHERE carrier_id = ? AND fleet_code = ?`,
		carrierID,
		fleetCode,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteAllCarrierMappings deletes all mappings for one carrier.
func (s *Store) DeleteAllCarrierMappings(ctx context.Context, carrierID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	carrierID = strings.TrimSpace(carrierID)
	if s.fleetMap != nil {
		return s.fleetMap.DeleteAllMappings(ctx, carrierID)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM CarrierFleets WHERE carrier_id = ?`,
		carrierID,
	)
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
