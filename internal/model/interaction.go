package model

import (
	"encoding/json"
	"time"
)

// Interaction types a buyer can record against a listing.
const (
	InteractionView     = "VIEW"
	InteractionContact  = "CONTACT"
	InteractionBookmark = "BOOKMARK"
)

// ValidInteractionType reports whether t is one of the recognized
// interaction types.
func ValidInteractionType(t string) bool {
	switch t {
	case InteractionView, InteractionContact, InteractionBookmark:
		return true
	}
	return false
}

// Interaction is an immutable record of buyer engagement with a
// listing, stored in the `interactions` table. The farmer id is
// copied from the listing at write time so that aggregates stay
// stable when the listing is later deactivated.
//
// Fields:
//  ID        – primary key identifier (UUID).
//  BuyerID   – user who performed the interaction.
//  FarmerID  – listing owner at the time of recording (denormalized).
//  ListingID – target listing.
//  Type      – VIEW, CONTACT or BOOKMARK.
//  Metadata  – optional opaque JSON payload supplied by the client.
//  CreatedAt – timestamp of the interaction.
type Interaction struct {
	ID        string          // interactions.id
	BuyerID   string          // interactions.buyer_id
	FarmerID  string          // interactions.farmer_id
	ListingID string          // interactions.listing_id
	Type      string          // interactions.type
	Metadata  json.RawMessage // interactions.metadata (nullable JSON)
	CreatedAt time.Time       // interactions.created_at
}
