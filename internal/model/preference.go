package model

import (
	"encoding/json"
	"time"
)

// Preference holds a buyer's saved search filters and bookmarked
// listing ids, one row per user in `user_preferences`. Both JSON
// columns are opaque to the server: filters are only interpreted by
// the next search invocation on the client side, and saved listing
// ids are never joined against.
type Preference struct {
	UserID        string          // user_preferences.user_id
	SearchFilters json.RawMessage // user_preferences.search_filters (nullable JSON)
	SavedListings json.RawMessage // user_preferences.saved_listings (nullable JSON array)
	CreatedAt     time.Time       // user_preferences.created_at
	UpdatedAt     time.Time       // user_preferences.updated_at
}
