package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mwangik/farm-produce-market/internal/repository"
	"github.com/mwangik/farm-produce-market/internal/validation"
)

// publicPageCap bounds unauthenticated listing previews.
const publicPageCap = 20

// PublicHandler serves the unauthenticated reference and preview
// endpoints.
type PublicHandler struct {
	ListingRepo *repository.ListingRepo
	Reference   *repository.ReferenceRepo
	Log         *zap.Logger
}

func NewPublicHandler(l *repository.ListingRepo, r *repository.ReferenceRepo, log *zap.Logger) *PublicHandler {
	return &PublicHandler{ListingRepo: l, Reference: r, Log: log}
}

// Categories lists the active crop categories.
func (h *PublicHandler) Categories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Reference.ListCategories(ctx)
	if err != nil {
		h.Log.Error("list categories failed", zap.Error(err))
		return Fail(c, CodeInternal, "Failed to get categories")
	}
	return OK(c, 200, echo.Map{"categories": newCategoryResps(cats)})
}

// Locations lists the active counties.
func (h *PublicHandler) Locations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	locs, err := h.Reference.ListLocations(ctx)
	if err != nil {
		h.Log.Error("list locations failed", zap.Error(err))
		return Fail(c, CodeInternal, "Failed to get locations")
	}
	return OK(c, 200, echo.Map{"locations": newLocationResps(locs)})
}

// Listings returns the newest active listings, capped at twenty, as
// the anonymous preview of the marketplace.
func (h *PublicHandler) Listings(c echo.Context) error {
	limit, fe := validation.ParseLimit(c.QueryParam("limit"), publicPageCap)
	if fe != nil {
		return FailDetails(c, CodeValidation, "Validation failed", []validation.FieldError{*fe})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.ListingRepo.PublicNewest(ctx, limit)
	if err != nil {
		h.Log.Error("public listings failed", zap.Error(err))
		return Fail(c, CodeInternal, "Failed to get listings")
	}
	return OK(c, 200, echo.Map{"listings": newListingResps(rows), "count": len(rows)})
}
