package model

import "time"

// Category is read-only reference data describing a crop category
// (cereals, vegetables, fruits, ...). Rows are seeded by migration
// and served to unauthenticated callers.
type Category struct {
	ID          string    // categories.id
	Name        string    // categories.name (unique)
	Description string    // categories.description
	IsActive    bool      // categories.is_active
	CreatedAt   time.Time // categories.created_at
}

// Location is read-only reference data describing an administrative
// county and the region it belongs to.
type Location struct {
	ID       string // locations.id
	County   string // locations.county
	Region   string // locations.region
	IsActive bool   // locations.is_active
}
