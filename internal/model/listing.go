package model

import "time"

// Listing represents a farmer's offer of harvested produce as stored
// in the `produce_listings` table. A listing always belongs to
// exactly one user with the FARMER role. Deleting a listing only
// toggles IsActive; rows are never removed so that interaction
// history stays intact.
//
// Fields:
//  ID           – primary key identifier (UUID).
//  FarmerID     – owning farmer's user id.
//  CropType     – free-text crop name (e.g. "Tomatoes").
//  Quantity     – amount on offer, strictly positive.
//  Unit         – measurement unit for the quantity (e.g. "kg").
//  PricePerUnit – asking price per unit, strictly positive.
//  HarvestDate  – when the crop was or will be harvested.
//  Location     – free-text location of the produce.
//  Description  – optional longer description.
//  CategoryID   – optional reference into the categories table.
//  IsActive     – soft-delete flag; inactive listings are hidden
//                 from buyers but remain visible to their owner.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Listing struct {
	ID           string    // produce_listings.id
	FarmerID     string    // produce_listings.farmer_id
	CropType     string    // produce_listings.crop_type
	Quantity     float64   // produce_listings.quantity
	Unit         string    // produce_listings.unit
	PricePerUnit float64   // produce_listings.price_per_unit
	HarvestDate  time.Time // produce_listings.harvest_date
	Location     string    // produce_listings.location
	Description  *string   // produce_listings.description (nullable)
	CategoryID   *string   // produce_listings.category_id (nullable)
	IsActive     bool      // produce_listings.is_active
	CreatedAt    time.Time // produce_listings.created_at
	UpdatedAt    time.Time // produce_listings.updated_at
}

// FarmerSummary carries the subset of the owning farmer's record
// embedded into buyer-facing listing responses. The phone number is
// included so the UI can form contact deep links.
type FarmerSummary struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
}

// CategorySummary is the category subset embedded into listing rows.
type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
