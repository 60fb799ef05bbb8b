package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/mwangik/farm-produce-market/internal/model"
)

// PreferenceRepo stores one saved-filters row per buyer. The JSON
// columns are opaque: the server never interprets them.
type PreferenceRepo struct{ DB *sql.DB }

func NewPreferenceRepo(db *sql.DB) *PreferenceRepo { return &PreferenceRepo{DB: db} }

// Get returns the preference row for a user. A missing row is
// reported as ErrNotFound; the handler maps that to an empty object.
func (r *PreferenceRepo) Get(ctx context.Context, userID string) (model.Preference, error) {
	var (
		p       model.Preference
		filters sql.NullString
		saved   sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, search_filters, saved_listings, created_at, updated_at FROM user_preferences WHERE user_id=? LIMIT 1",
		userID).Scan(&p.UserID, &filters, &saved, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Preference{}, ErrNotFound
	}
	if err != nil {
		return model.Preference{}, err
	}
	if filters.Valid {
		p.SearchFilters = json.RawMessage(filters.String)
	}
	if saved.Valid {
		p.SavedListings = json.RawMessage(saved.String)
	}
	return p, nil
}

// Upsert creates or replaces the row in a single atomic statement.
// updated_at is maintained server-side by the schema.
func (r *PreferenceRepo) Upsert(ctx context.Context, userID string, searchFilters, savedListings json.RawMessage) (model.Preference, error) {
	var filters, saved any
	if len(searchFilters) > 0 {
		filters = []byte(searchFilters)
	}
	if len(savedListings) > 0 {
		saved = []byte(savedListings)
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, search_filters, saved_listings) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE
		   search_filters = VALUES(search_filters),
		   saved_listings = VALUES(saved_listings)`,
		userID, filters, saved)
	if err != nil {
		return model.Preference{}, err
	}
	return r.Get(ctx, userID)
}
