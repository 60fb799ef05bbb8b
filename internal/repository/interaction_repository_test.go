package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingOwnerSelect = "SELECT farmer_id, is_active FROM produce_listings WHERE id=?"

func TestInteractionCreate_DenormalizesFarmer(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInteractionRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(listingOwnerSelect)).
		WithArgs("l-1").
		WillReturnRows(sqlmock.NewRows([]string{"farmer_id", "is_active"}).AddRow("f-9", true))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO interactions")).
		WithArgs(sqlmock.AnyArg(), "b-1", "f-9", "l-1", "VIEW", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	in, err := repo.Create(context.Background(), "b-1", "l-1", "VIEW", nil)
	require.NoError(t, err)
	assert.Equal(t, "f-9", in.FarmerID)
	assert.Equal(t, "b-1", in.BuyerID)
	assert.NotEmpty(t, in.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionCreate_InactiveListing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInteractionRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(listingOwnerSelect)).
		WithArgs("l-1").
		WillReturnRows(sqlmock.NewRows([]string{"farmer_id", "is_active"}).AddRow("f-9", false))

	_, err := repo.Create(context.Background(), "b-1", "l-1", "CONTACT", nil)
	assert.ErrorIs(t, err, ErrListingInactive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionCreate_MissingListing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInteractionRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(listingOwnerSelect)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"farmer_id", "is_active"}))

	_, err := repo.Create(context.Background(), "b-1", "ghost", "VIEW", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInteractionCreate_PassesMetadata(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInteractionRepo(db)

	meta := json.RawMessage(`{"source":"search"}`)

	mock.ExpectQuery(regexp.QuoteMeta(listingOwnerSelect)).
		WithArgs("l-1").
		WillReturnRows(sqlmock.NewRows([]string{"farmer_id", "is_active"}).AddRow("f-9", true))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO interactions")).
		WithArgs(sqlmock.AnyArg(), "b-1", "f-9", "l-1", "BOOKMARK", []byte(meta), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	in, err := repo.Create(context.Background(), "b-1", "l-1", "BOOKMARK", meta)
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"search"}`, string(in.Metadata))
}

func TestRecentByListings_CapsPerListing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInteractionRepo(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "type", "metadata", "created_at",
		"lid", "crop_type", "quantity", "unit", "price_per_unit", "location",
		"uid", "full_name",
	})
	for i := 0; i < 2; i++ {
		rows.AddRow("i-"+string(rune('a'+i)), "VIEW", nil, now.Add(-time.Duration(i)*time.Minute),
			"l-1", "Maize", 100.0, "kg", 45.0, "Nakuru", "b-1", "Bob Buyer")
	}
	// The cap is pushed into SQL via ROW_NUMBER so a busy listing
	// never streams its full history.
	mock.ExpectQuery(regexp.QuoteMeta("ROW_NUMBER() OVER (PARTITION BY listing_id")).
		WithArgs("l-1", 2).
		WillReturnRows(rows)

	out, err := repo.RecentByListings(context.Background(), []string{"l-1"}, 2)
	require.NoError(t, err)
	require.Len(t, out["l-1"], 2)
	assert.Equal(t, "Bob Buyer", out["l-1"][0].Buyer.FullName)
}

func TestRecentByListings_Empty(t *testing.T) {
	db, _ := newMock(t)
	repo := NewInteractionRepo(db)

	out, err := repo.RecentByListings(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.Empty(t, out)
}
