package handler

import (
	"encoding/json"
	"time"

	"github.com/mwangik/farm-produce-market/internal/model"
	"github.com/mwangik/farm-produce-market/internal/repository"
)

// userResp is the outward shape of a user. The credential hash is
// never serialized.
type userResp struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	FullName    string       `json:"fullName"`
	PhoneNumber string       `json:"phoneNumber"`
	Role        string       `json:"role"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Profile     *profileResp `json:"profile,omitempty"`
}

type profileResp struct {
	Location *string  `json:"location"`
	FarmSize *float64 `json:"farmSize"`
}

func newUserResp(u model.User, p *model.Profile) userResp {
	resp := userResp{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if p != nil {
		resp.Profile = &profileResp{Location: p.Location, FarmSize: p.FarmSize}
	}
	return resp
}

type tokenResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// listingResp is the outward shape of a listing, optionally decorated
// with the farmer and category summaries and, on the owner's view,
// its most recent interactions.
type listingResp struct {
	ID           string                         `json:"id"`
	FarmerID     string                         `json:"farmerId"`
	CropType     string                         `json:"cropType"`
	Quantity     float64                        `json:"quantity"`
	Unit         string                         `json:"unit"`
	PricePerUnit float64                        `json:"pricePerUnit"`
	HarvestDate  time.Time                      `json:"harvestDate"`
	Location     string                         `json:"location"`
	Description  *string                        `json:"description,omitempty"`
	CategoryID   *string                        `json:"categoryId,omitempty"`
	IsActive     bool                           `json:"isActive"`
	CreatedAt    time.Time                      `json:"createdAt"`
	UpdatedAt    time.Time                      `json:"updatedAt"`
	Farmer       *model.FarmerSummary           `json:"farmer,omitempty"`
	Category     *model.CategorySummary         `json:"category,omitempty"`
	Interactions []repository.InteractionDetail `json:"interactions,omitempty"`
}

func newListingResp(row repository.ListingRow) listingResp {
	return listingResp{
		ID:           row.ID,
		FarmerID:     row.FarmerID,
		CropType:     row.CropType,
		Quantity:     row.Quantity,
		Unit:         row.Unit,
		PricePerUnit: row.PricePerUnit,
		HarvestDate:  row.HarvestDate,
		Location:     row.Location,
		Description:  row.Description,
		CategoryID:   row.CategoryID,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Farmer:       row.Farmer,
		Category:     row.Category,
	}
}

func newListingResps(rows []repository.ListingRow) []listingResp {
	out := make([]listingResp, 0, len(rows))
	for _, r := range rows {
		out = append(out, newListingResp(r))
	}
	return out
}

type interactionResp struct {
	ID        string          `json:"id"`
	BuyerID   string          `json:"buyerId"`
	FarmerID  string          `json:"farmerId"`
	ListingID string          `json:"listingId"`
	Type      string          `json:"type"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func newInteractionResp(in model.Interaction) interactionResp {
	return interactionResp{
		ID:        in.ID,
		BuyerID:   in.BuyerID,
		FarmerID:  in.FarmerID,
		ListingID: in.ListingID,
		Type:      in.Type,
		Metadata:  in.Metadata,
		CreatedAt: in.CreatedAt,
	}
}

type preferenceResp struct {
	UserID        string          `json:"userId"`
	SearchFilters json.RawMessage `json:"searchFilters"`
	SavedListings json.RawMessage `json:"savedListings"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func newPreferenceResp(p model.Preference) preferenceResp {
	return preferenceResp{
		UserID:        p.UserID,
		SearchFilters: p.SearchFilters,
		SavedListings: p.SavedListings,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type categoryResp struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func newCategoryResps(cats []model.Category) []categoryResp {
	out := make([]categoryResp, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryResp{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	return out
}

type locationResp struct {
	ID     string `json:"id"`
	County string `json:"county"`
	Region string `json:"region"`
}

func newLocationResps(locs []model.Location) []locationResp {
	out := make([]locationResp, 0, len(locs))
	for _, l := range locs {
		out = append(out, locationResp{ID: l.ID, County: l.County, Region: l.Region})
	}
	return out
}
