package repository

import (
	"context"
	"database/sql"

	"github.com/mwangik/farm-produce-market/internal/model"
)

// ReferenceRepo serves the read-only catalogs of crop categories and
// administrative locations.
type ReferenceRepo struct{ DB *sql.DB }

func NewReferenceRepo(db *sql.DB) *ReferenceRepo { return &ReferenceRepo{DB: db} }

// ListCategories returns active categories sorted by name.
func (r *ReferenceRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, COALESCE(description, ''), is_active, created_at FROM categories WHERE is_active = 1 ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListLocations returns active locations sorted by county.
func (r *ReferenceRepo) ListLocations(ctx context.Context) ([]model.Location, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, county, region, is_active FROM locations WHERE is_active = 1 ORDER BY county ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Location{}
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.County, &l.Region, &l.IsActive); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
