package validation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/mwangik/farm-produce-market/internal/model"
)

// Number is a float64 that also accepts quoted numeric strings during
// JSON decoding, matching the coercion rules of the API contract.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FullName    string  `json:"fullName"`
	PhoneNumber string  `json:"phoneNumber"`
	Role        string  `json:"role"`
	Location    *string `json:"location"`
	FarmSize    *Number `json:"farmSize"`
}

// Validate normalizes the request in place and returns field errors.
func (r *RegisterRequest) Validate() []FieldError {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))

	var errs []FieldError
	if !ValidEmail(r.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "Invalid email format"})
	}
	if ok, pe := ValidPassword(r.Password); !ok {
		errs = append(errs, pe...)
	}
	if !ValidFullName(r.FullName) {
		errs = append(errs, FieldError{Field: "fullName", Message: "Full name must be 2-100 characters"})
	}
	if !ValidPhone(r.PhoneNumber) {
		errs = append(errs, FieldError{Field: "phoneNumber", Message: "Invalid Kenyan phone number format (+254XXXXXXXXX)"})
	}
	if !ValidRole(r.Role) {
		errs = append(errs, FieldError{Field: "role", Message: "Role must be either FARMER or BUYER"})
	}
	if r.Role == model.RoleFarmer && (r.Location == nil || strings.TrimSpace(*r.Location) == "") {
		errs = append(errs, FieldError{Field: "location", Message: "Location is required for farmers"})
	}
	if r.FarmSize != nil && *r.FarmSize <= 0 {
		errs = append(errs, FieldError{Field: "farmSize", Message: "Farm size must be positive"})
	}
	return errs
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() []FieldError {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	var errs []FieldError
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "Email is required"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	}
	return errs
}

// RefreshRequest is the body of POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *RefreshRequest) Validate() []FieldError {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	if r.RefreshToken == "" {
		return []FieldError{{Field: "refreshToken", Message: "Refresh token is required"}}
	}
	return nil
}

// UpdateProfileRequest is the body of PUT /api/auth/profile. All
// fields are optional; only supplied fields are changed.
type UpdateProfileRequest struct {
	FullName    *string `json:"fullName"`
	PhoneNumber *string `json:"phoneNumber"`
	Location    *string `json:"location"`
	FarmSize    *Number `json:"farmSize"`
}

func (r *UpdateProfileRequest) Validate() []FieldError {
	var errs []FieldError
	if r.FullName != nil && !ValidFullName(*r.FullName) {
		errs = append(errs, FieldError{Field: "fullName", Message: "Full name must be 2-100 characters"})
	}
	if r.PhoneNumber != nil && !ValidPhone(*r.PhoneNumber) {
		errs = append(errs, FieldError{Field: "phoneNumber", Message: "Invalid Kenyan phone number format (+254XXXXXXXXX)"})
	}
	if r.FarmSize != nil && *r.FarmSize <= 0 {
		errs = append(errs, FieldError{Field: "farmSize", Message: "Farm size must be positive"})
	}
	return errs
}

// ChangePasswordRequest is the body of PUT /api/auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CurrentPassword == "" {
		errs = append(errs, FieldError{Field: "currentPassword", Message: "Current password is required"})
	}
	if ok, pe := ValidPassword(r.NewPassword); !ok {
		for _, e := range pe {
			errs = append(errs, FieldError{Field: "newPassword", Message: e.Message})
		}
	}
	return errs
}

// CreateListingRequest is the body of POST /api/farmer/listings.
type CreateListingRequest struct {
	CropType     string  `json:"cropType"`
	Quantity     Number  `json:"quantity"`
	Unit         string  `json:"unit"`
	PricePerUnit Number  `json:"pricePerUnit"`
	HarvestDate  string  `json:"harvestDate"`
	Location     string  `json:"location"`
	Description  *string `json:"description"`
	CategoryID   *string `json:"categoryId"`
}

// Validate checks the payload and returns the parsed harvest date
// alongside any field errors.
func (r *CreateListingRequest) Validate() (time.Time, []FieldError) {
	var errs []FieldError
	if len(strings.TrimSpace(r.CropType)) < 2 {
		errs = append(errs, FieldError{Field: "cropType", Message: "Crop type must be at least 2 characters"})
	}
	if r.Quantity <= 0 {
		errs = append(errs, FieldError{Field: "quantity", Message: "Quantity must be a positive number"})
	}
	if strings.TrimSpace(r.Unit) == "" {
		errs = append(errs, FieldError{Field: "unit", Message: "Unit is required"})
	}
	if r.PricePerUnit <= 0 {
		errs = append(errs, FieldError{Field: "pricePerUnit", Message: "Price must be a positive number"})
	}
	if strings.TrimSpace(r.Location) == "" {
		errs = append(errs, FieldError{Field: "location", Message: "Location is required"})
	}
	harvest, err := time.Parse(time.RFC3339, r.HarvestDate)
	if err != nil {
		errs = append(errs, FieldError{Field: "harvestDate", Message: "Invalid harvest date"})
	}
	return harvest, errs
}

// UpdateListingRequest is the body of PUT /api/farmer/listings/:id.
// Every field is optional; supplied numeric fields are revalidated.
type UpdateListingRequest struct {
	CropType     *string `json:"cropType"`
	Quantity     *Number `json:"quantity"`
	Unit         *string `json:"unit"`
	PricePerUnit *Number `json:"pricePerUnit"`
	HarvestDate  *string `json:"harvestDate"`
	Location     *string `json:"location"`
	Description  *string `json:"description"`
	CategoryID   *string `json:"categoryId"`
	IsActive     *bool   `json:"isActive"`
}

func (r *UpdateListingRequest) Validate() (*time.Time, []FieldError) {
	var errs []FieldError
	if r.CropType != nil && len(strings.TrimSpace(*r.CropType)) < 2 {
		errs = append(errs, FieldError{Field: "cropType", Message: "Crop type must be at least 2 characters"})
	}
	if r.Quantity != nil && *r.Quantity <= 0 {
		errs = append(errs, FieldError{Field: "quantity", Message: "Quantity must be positive"})
	}
	if r.PricePerUnit != nil && *r.PricePerUnit <= 0 {
		errs = append(errs, FieldError{Field: "pricePerUnit", Message: "Price must be positive"})
	}
	var harvest *time.Time
	if r.HarvestDate != nil {
		t, err := time.Parse(time.RFC3339, *r.HarvestDate)
		if err != nil {
			errs = append(errs, FieldError{Field: "harvestDate", Message: "Invalid harvest date"})
		} else {
			harvest = &t
		}
	}
	return harvest, errs
}

// InteractionRequest is the body of POST /api/buyer/interactions.
type InteractionRequest struct {
	ListingID string          `json:"listingId"`
	Type      string          `json:"type"`
	Metadata  json.RawMessage `json:"metadata"`
}

func (r *InteractionRequest) Validate() []FieldError {
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	var errs []FieldError
	if r.ListingID == "" {
		errs = append(errs, FieldError{Field: "listingId", Message: "Listing id is required"})
	}
	if !model.ValidInteractionType(r.Type) {
		errs = append(errs, FieldError{Field: "type", Message: "Type must be VIEW, CONTACT or BOOKMARK"})
	}
	return errs
}

// PreferencesRequest is the body of POST /api/buyer/preferences. Both
// members are opaque JSON passed through unchanged.
type PreferencesRequest struct {
	SearchFilters json.RawMessage `json:"searchFilters"`
	SavedListings json.RawMessage `json:"savedListings"`
}

func (r *PreferencesRequest) Validate() []FieldError {
	if len(r.SavedListings) > 0 {
		var ids []string
		if err := json.Unmarshal(r.SavedListings, &ids); err != nil {
			return []FieldError{{Field: "savedListings", Message: "Must be an array of listing ids"}}
		}
	}
	return nil
}
