package handler

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mwangik/farm-produce-market/internal/middleware"
	"github.com/mwangik/farm-produce-market/internal/repository"
	"github.com/mwangik/farm-produce-market/internal/validation"
)

// FarmerHandler serves the farmer-only listing management surface.
type FarmerHandler struct {
	Listings     *repository.ListingRepo
	Interactions *repository.InteractionRepo
	Log          *zap.Logger
}

func NewFarmerHandler(l *repository.ListingRepo, i *repository.InteractionRepo, log *zap.Logger) *FarmerHandler {
	return &FarmerHandler{Listings: l, Interactions: i, Log: log}
}

// CreateListing creates an active listing owned by the caller.
func (h *FarmerHandler) CreateListing(c echo.Context) error {
	u := middleware.CurrentUser(c)

	var req validation.CreateListingRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, CodeValidation, "invalid body")
	}
	harvest, errs := req.Validate()
	if len(errs) > 0 {
		return FailDetails(c, CodeValidation, "Validation failed", errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	row, err := h.Listings.Create(ctx, repository.CreateListingParams{
		FarmerID:     u.ID,
		CropType:     req.CropType,
		Quantity:     float64(req.Quantity),
		Unit:         req.Unit,
		PricePerUnit: float64(req.PricePerUnit),
		HarvestDate:  harvest,
		Location:     req.Location,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
	})
	if err != nil {
		h.Log.Error("create listing failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Failed to create listing")
	}
	h.Log.Info("listing created", zap.String("listing_id", row.ID), zap.String("user_id", u.ID))
	return OK(c, 201, echo.Map{"listing": newListingResp(row)})
}

// ListOwnListings returns every listing owned by the caller, active
// or not, each decorated with its five most recent interactions.
func (h *FarmerHandler) ListOwnListings(c echo.Context) error {
	u := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Listings.ListByFarmer(ctx, u.ID)
	if err != nil {
		h.Log.Error("list own listings failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Failed to get listings")
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	recent, err := h.Interactions.RecentByListings(ctx, ids, 5)
	if err != nil {
		h.Log.Error("load recent interactions failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Failed to get listings")
	}

	out := make([]listingResp, 0, len(rows))
	for _, r := range rows {
		resp := newListingResp(r)
		resp.Interactions = recent[r.ID]
		out = append(out, resp)
	}
	return OK(c, 200, echo.Map{"listings": out, "count": len(out)})
}

// UpdateListing applies a partial update to one of the caller's
// listings. A listing owned by someone else reads as not found.
func (h *FarmerHandler) UpdateListing(c echo.Context) error {
	u := middleware.CurrentUser(c)
	listingID := c.Param("id")

	var req validation.UpdateListingRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, CodeValidation, "invalid body")
	}
	harvest, errs := req.Validate()
	if len(errs) > 0 {
		return FailDetails(c, CodeValidation, "Validation failed", errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	patch := repository.ListingPatch{
		CropType:    req.CropType,
		Unit:        req.Unit,
		HarvestDate: harvest,
		Location:    req.Location,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	}
	if req.Quantity != nil {
		q := float64(*req.Quantity)
		patch.Quantity = &q
	}
	if req.PricePerUnit != nil {
		p := float64(*req.PricePerUnit)
		patch.PricePerUnit = &p
	}

	row, err := h.Listings.Update(ctx, listingID, u.ID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Fail(c, CodeNotFound, "Listing not found")
		}
		h.Log.Error("update listing failed", zap.Error(err), zap.String("listing_id", listingID))
		return Fail(c, CodeInternal, "Failed to update listing")
	}
	return OK(c, 200, echo.Map{"listing": newListingResp(row)})
}

// DeleteListing soft-deletes one of the caller's listings by turning
// its active flag off. The row and its interaction history remain.
func (h *FarmerHandler) DeleteListing(c echo.Context) error {
	u := middleware.CurrentUser(c)
	listingID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Listings.SoftDelete(ctx, listingID, u.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Fail(c, CodeNotFound, "Listing not found")
		}
		h.Log.Error("delete listing failed", zap.Error(err), zap.String("listing_id", listingID))
		return Fail(c, CodeInternal, "Failed to delete listing")
	}
	h.Log.Info("listing deactivated", zap.String("listing_id", listingID), zap.String("user_id", u.ID))
	return OK(c, 200, echo.Map{"message": "Listing deleted"})
}

// Dashboard aggregates the caller's listing stats, recent
// interactions and most engaged listings.
func (h *FarmerHandler) Dashboard(c echo.Context) error {
	u := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	total, active, err := h.Listings.StatsByFarmer(ctx, u.ID)
	if err != nil {
		h.Log.Error("dashboard stats failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Failed to get dashboard")
	}
	byType, err := h.Interactions.CountsByTypeForFarmer(ctx, u.ID)
	if err != nil {
		h.Log.Error("dashboard counts failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Failed to get dashboard")
	}
	var totalInteractions int64
	for _, n := range byType {
		totalInteractions += n
	}
	recent, err := h.Interactions.RecentByFarmer(ctx, u.ID, 10)
	if err != nil {
		h.Log.Error("dashboard recent failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Failed to get dashboard")
	}
	top, err := h.Listings.TopByInteractions(ctx, u.ID, 5)
	if err != nil {
		h.Log.Error("dashboard top listings failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Failed to get dashboard")
	}

	topOut := make([]echo.Map, 0, len(top))
	for _, t := range top {
		topOut = append(topOut, echo.Map{
			"listing":          newListingResp(t.ListingRow),
			"interactionCount": t.InteractionCount,
		})
	}
	return OK(c, 200, echo.Map{
		"stats": echo.Map{
			"totalListings":      total,
			"activeListings":     active,
			"inactiveListings":   total - active,
			"totalInteractions":  totalInteractions,
			"interactionsByType": byType,
		},
		"recentInteractions": recent,
		"topListings":        topOut,
	})
}
