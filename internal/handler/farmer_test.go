package handler

import (
	"database/sql"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mwangik/farm-produce-market/internal/model"
	"github.com/mwangik/farm-produce-market/internal/repository"
)

func newFarmerHandler(t *testing.T) (*FarmerHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFarmerHandler(
		repository.NewListingRepo(db), repository.NewInteractionRepo(db), zap.NewNop()), mock
}

func asFarmer(c echo.Context, id string) {
	c.Set("user", &model.User{ID: id, Role: model.RoleFarmer, IsActive: true})
	c.Set("user_id", id)
	c.Set("role", model.RoleFarmer)
}

func mockListingRows(id, farmerID string, active bool) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "farmer_id", "crop_type", "quantity", "unit", "price_per_unit",
		"harvest_date", "location", "description", "category_id", "is_active",
		"created_at", "updated_at", "full_name", "phone_number", "name",
	}).AddRow(id, farmerID, "Maize", 100.0, "kg", 45.0,
		now, "Nakuru", nil, nil, active, now, now,
		"Jane Farmer", "+254712345678", nil)
}

func TestCreateListing_ValidationFailure(t *testing.T) {
	h, mock := newFarmerHandler(t)
	e := echo.New()

	c, rec := doJSON(e, http.MethodPost, "/api/farmer/listings",
		`{"cropType":"M","quantity":-1,"unit":"","pricePerUnit":0,"harvestDate":"soon","location":""}`)
	asFarmer(c, "f-1")
	require.NoError(t, h.CreateListing(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, CodeValidation, env.Error.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateListing_Success(t *testing.T) {
	h, mock := newFarmerHandler(t)
	e := echo.New()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO produce_listings")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT").WillReturnRows(mockListingRows("l-1", "f-1", true))

	c, rec := doJSON(e, http.MethodPost, "/api/farmer/listings",
		`{"cropType":"Maize","quantity":"100","unit":"kg","pricePerUnit":45,"harvestDate":"2026-03-01T00:00:00Z","location":"Nakuru"}`)
	asFarmer(c, "f-1")
	require.NoError(t, h.CreateListing(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	listing := env.Data.(map[string]any)["listing"].(map[string]any)
	assert.Equal(t, "Maize", listing["cropType"])
	assert.Equal(t, true, listing["isActive"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateListing_NotOwned(t *testing.T) {
	h, mock := newFarmerHandler(t)
	e := echo.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("l-1", "f-2").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := doJSON(e, http.MethodPut, "/api/farmer/listings/l-1", `{"pricePerUnit":50}`)
	c.SetParamNames("id")
	c.SetParamValues("l-1")
	asFarmer(c, "f-2")
	require.NoError(t, h.UpdateListing(c))

	// Someone else's listing reads as missing, not forbidden.
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, CodeNotFound, env.Error.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteListing_SoftDeletes(t *testing.T) {
	h, mock := newFarmerHandler(t)
	e := echo.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("l-1", "f-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("l-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE produce_listings SET is_active=? WHERE id=?")).
		WithArgs(false, "l-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT").WillReturnRows(mockListingRows("l-1", "f-1", false))

	c, rec := doJSON(e, http.MethodDelete, "/api/farmer/listings/l-1", "")
	c.SetParamNames("id")
	c.SetParamValues("l-1")
	asFarmer(c, "f-1")
	require.NoError(t, h.DeleteListing(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOwnListings_IncludesInactive(t *testing.T) {
	h, mock := newFarmerHandler(t)
	e := echo.New()

	now := time.Now().UTC()
	rows := mockListingRows("l-1", "f-1", true).
		AddRow("l-2", "f-1", "Beans", 50.0, "kg", 120.0,
			now, "Nakuru", nil, nil, false, now, now,
			"Jane Farmer", "+254712345678", nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.farmer_id=?")).
		WithArgs("f-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("listing_id IN (?,?)")).
		WithArgs("l-1", "l-2", 5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "type", "metadata", "created_at",
			"lid", "crop_type", "quantity", "unit", "price_per_unit", "location",
			"uid", "full_name",
		}))

	c, rec := doJSON(e, http.MethodGet, "/api/farmer/listings", "")
	asFarmer(c, "f-1")
	require.NoError(t, h.ListOwnListings(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	assert.Equal(t, float64(2), data["count"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
