package handler

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mwangik/farm-produce-market/internal/middleware"
	"github.com/mwangik/farm-produce-market/internal/model"
	"github.com/mwangik/farm-produce-market/internal/repository"
	"github.com/mwangik/farm-produce-market/internal/validation"
)

// buyerPageCap bounds the page size on authenticated buyer queries.
const buyerPageCap = 50

// BuyerHandler serves the buyer-facing discovery and engagement
// endpoints. Buyers only ever see active listings.
type BuyerHandler struct {
	Listings     *repository.ListingRepo
	Interactions *repository.InteractionRepo
	Preferences  *repository.PreferenceRepo
	Log          *zap.Logger
}

func NewBuyerHandler(l *repository.ListingRepo, i *repository.InteractionRepo, p *repository.PreferenceRepo, log *zap.Logger) *BuyerHandler {
	return &BuyerHandler{Listings: l, Interactions: i, Preferences: p, Log: log}
}

// pageParams reads page/limit from the query string under the buyer
// cap, collecting coercion failures as field errors.
func pageParams(c echo.Context, errs *[]validation.FieldError) (page, limit int) {
	page, fe := validation.ParsePage(c.QueryParam("page"))
	if fe != nil {
		*errs = append(*errs, *fe)
	}
	limit, fe = validation.ParseLimit(c.QueryParam("limit"), buyerPageCap)
	if fe != nil {
		*errs = append(*errs, *fe)
	}
	return page, limit
}

// QueryListings pages through active listings with the basic filter
// set: free-text search, exact county, exact crop, category.
func (h *BuyerHandler) QueryListings(c echo.Context) error {
	var errs []validation.FieldError
	q := repository.ListingQuery{
		Search:     c.QueryParam("search"),
		County:     c.QueryParam("location"),
		Crop:       c.QueryParam("crop"),
		CategoryID: c.QueryParam("category"),
	}
	q.Page, q.Limit = pageParams(c, &errs)
	if len(errs) > 0 {
		return FailDetails(c, CodeValidation, "Validation failed", errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, total, err := h.Listings.QueryActive(ctx, q)
	if err != nil {
		h.Log.Error("query listings failed", zap.Error(err))
		return Fail(c, CodeInternal, "Failed to get listings")
	}
	return OK(c, 200, echo.Map{
		"listings":   newListingResps(rows),
		"pagination": NewPagination(q.Page, q.Limit, total),
	})
}

// SearchListings is the advanced query: contains matches on crop and
// location plus price and harvest-date ranges. Numeric and date
// parameters that fail to coerce are validation errors, not silently
// dropped filters.
func (h *BuyerHandler) SearchListings(c echo.Context) error {
	var errs []validation.FieldError
	q := repository.ListingQuery{
		Search:           c.QueryParam("query"),
		CropContains:     c.QueryParam("cropType"),
		LocationContains: c.QueryParam("location"),
	}
	q.Page, q.Limit = pageParams(c, &errs)

	if v, fe := validation.ParseFloat("minPrice", c.QueryParam("minPrice")); fe != nil {
		errs = append(errs, *fe)
	} else {
		q.MinPrice = v
	}
	if v, fe := validation.ParseFloat("maxPrice", c.QueryParam("maxPrice")); fe != nil {
		errs = append(errs, *fe)
	} else {
		q.MaxPrice = v
	}
	if v, fe := validation.ParseTime("harvestDateFrom", c.QueryParam("harvestDateFrom")); fe != nil {
		errs = append(errs, *fe)
	} else {
		q.HarvestFrom = v
	}
	if v, fe := validation.ParseTime("harvestDateTo", c.QueryParam("harvestDateTo")); fe != nil {
		errs = append(errs, *fe)
	} else {
		q.HarvestTo = v
	}
	if len(errs) > 0 {
		return FailDetails(c, CodeValidation, "Validation failed", errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, total, err := h.Listings.QueryActive(ctx, q)
	if err != nil {
		h.Log.Error("search listings failed", zap.Error(err))
		return Fail(c, CodeInternal, "Failed to search listings")
	}
	return OK(c, 200, echo.Map{
		"listings":   newListingResps(rows),
		"pagination": NewPagination(q.Page, q.Limit, total),
	})
}

// GetListing returns one active listing by id. Inactive listings are
// invisible to buyers.
func (h *BuyerHandler) GetListing(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	row, err := h.Listings.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Fail(c, CodeNotFound, "Listing not found")
		}
		h.Log.Error("get listing failed", zap.Error(err))
		return Fail(c, CodeInternal, "Failed to get listing")
	}
	if !row.IsActive {
		return Fail(c, CodeNotFound, "Listing not found")
	}
	return OK(c, 200, echo.Map{"listing": newListingResp(row)})
}

// RecordInteraction appends a VIEW, CONTACT or BOOKMARK event against
// an active listing.
func (h *BuyerHandler) RecordInteraction(c echo.Context) error {
	u := middleware.CurrentUser(c)

	var req validation.InteractionRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, CodeValidation, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return FailDetails(c, CodeValidation, "Validation failed", errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	in, err := h.Interactions.Create(ctx, u.ID, req.ListingID, req.Type, req.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return Fail(c, CodeNotFound, "Listing not found")
		case errors.Is(err, repository.ErrListingInactive):
			return Fail(c, CodeListingInactive, "Listing is no longer active")
		}
		h.Log.Error("record interaction failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Failed to record interaction")
	}
	return OK(c, 201, echo.Map{"interaction": newInteractionResp(in)})
}

// GetPreferences returns the caller's saved filters. A buyer that has
// never saved anything gets an empty object rather than a 404.
func (h *BuyerHandler) GetPreferences(c echo.Context) error {
	u := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Preferences.Get(ctx, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return OK(c, 200, echo.Map{"preferences": newPreferenceResp(model.Preference{UserID: u.ID})})
		}
		h.Log.Error("get preferences failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Failed to get preferences")
	}
	return OK(c, 200, echo.Map{"preferences": newPreferenceResp(p)})
}

// SavePreferences creates or replaces the caller's saved filters.
func (h *BuyerHandler) SavePreferences(c echo.Context) error {
	u := middleware.CurrentUser(c)

	var req validation.PreferencesRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, CodeValidation, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return FailDetails(c, CodeValidation, "Validation failed", errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Preferences.Upsert(ctx, u.ID, req.SearchFilters, req.SavedListings)
	if err != nil {
		h.Log.Error("save preferences failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Failed to save preferences")
	}
	return OK(c, 200, echo.Map{"preferences": newPreferenceResp(p)})
}

// Dashboard aggregates the caller's interaction history.
func (h *BuyerHandler) Dashboard(c echo.Context) error {
	u := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	byType, err := h.Interactions.CountsByTypeForBuyer(ctx, u.ID)
	if err != nil {
		h.Log.Error("dashboard counts failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Failed to get dashboard")
	}
	var total int64
	for _, n := range byType {
		total += n
	}
	recent, err := h.Interactions.RecentByBuyer(ctx, u.ID, 10)
	if err != nil {
		h.Log.Error("dashboard recent failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Failed to get dashboard")
	}

	var prefs any
	if p, err := h.Preferences.Get(ctx, u.ID); err == nil {
		prefs = newPreferenceResp(p)
	}
	return OK(c, 200, echo.Map{
		"stats": echo.Map{
			"totalInteractions":  total,
			"interactionsByType": byType,
		},
		"recentInteractions": recent,
		"preferences":        prefs,
	})
}
