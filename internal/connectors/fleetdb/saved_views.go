package fleetdb

import (
	"context"
	"errors"
	"strings"

	fleetmap "go-fleet-ops-dashboard/internal/connectors/fleetmap"
)

// SavedView is an app-owned persisted table configuration in SQLite.
type SavedView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Scope       string `json:"scope"`
	ConfigJSON  string `json:"config_json"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

var errViewStoreUnavailable = errors.New("saved view sqlite store not configured")

func (s *Store) viewStore() (*fleetmap.Store, error) {
	if s == nil || s.fleetMap == nil {
		return nil, errViewStoreUnavailable
	}
	return s.fleetMap, nil
}

func (s *Store) HasViewStore() bool {
	return s != nil && s.fleetMap != nil
}

func (s *Store) ListSavedViews(ctx context.Context, scope string, limit int) ([]SavedView, error) {
	store, err := s.viewStore()
	if err != nil {
		return nil, err
	}
	items, err := store.ListSavedViews(ctx, scope, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SavedView, 0, len(items))
	for _, it := range items {
		out = append(out, savedViewRow(it))
	}
	return out, nil
}

func (s *Store) GetSavedView(ctx context.Context, id int64) (*SavedView, error) {
	store, err := s.viewStore()
	if err != nil {
		return nil, err
	}
	it, err := store.GetSavedView(ctx, id)
	if err != nil {
		return nil, err
	}
	row := savedViewRow(*it)
	return &row, nil
}

func (s *Store) UpsertSavedView(ctx context.Context, name, description, scope, configJSON string) (int64, error) {
	store, err := s.viewStore()
	if err != nil {
		return 0, err
	}
	return store.UpsertSavedView(ctx, strings.TrimSpace(name), strings.TrimSpace(description), strings.TrimSpace(scope), strings.TrimSpace(configJSON))
}

func (s *Store) DeleteSavedView(ctx context.Context, id int64) (int64, error) {
	store, err := s.viewStore()
	if err != nil {
		return 0, err
	}
	return store.DeleteSavedView(ctx, id)
}

func savedViewRow(it fleetmap.SavedView) SavedView {
	row := SavedView{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Scope:       it.Scope,
		ConfigJSON:  it.ConfigJSON,
	}
	if it.CreatedAt != nil {
		row.CreatedAt = it.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	if it.UpdatedAt != nil {
		row.UpdatedAt = it.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return row
}
