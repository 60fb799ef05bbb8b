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

const prefSelect = "SELECT user_id, search_filters, saved_listings, created_at, updated_at FROM user_preferences WHERE user_id=?"

func TestPreferenceGet_Missing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPreferenceRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(prefSelect)).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "search_filters", "saved_listings", "created_at", "updated_at"}))

	_, err := repo.Get(context.Background(), "u-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPreferenceUpsert_RoundTrip(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPreferenceRepo(db)

	filters := json.RawMessage(`{"county":"Nakuru"}`)
	saved := json.RawMessage(`["l-1","l-2"]`)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_preferences")).
		WithArgs("u-1", []byte(filters), []byte(saved)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(prefSelect)).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "search_filters", "saved_listings", "created_at", "updated_at"}).
			AddRow("u-1", string(filters), string(saved), now, now))

	p, err := repo.Upsert(context.Background(), "u-1", filters, saved)
	require.NoError(t, err)
	assert.JSONEq(t, string(filters), string(p.SearchFilters))
	assert.JSONEq(t, string(saved), string(p.SavedListings))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceUpsert_NilColumns(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPreferenceRepo(db)

	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_preferences")).
		WithArgs("u-1", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(prefSelect)).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "search_filters", "saved_listings", "created_at", "updated_at"}).
			AddRow("u-1", nil, nil, now, now))

	p, err := repo.Upsert(context.Background(), "u-1", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, p.SearchFilters)
	assert.Nil(t, p.SavedListings)
}
