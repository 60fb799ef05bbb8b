package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenSelect = "SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=?"

func TestValidateRefresh_Valid(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	rows := sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
		AddRow("u-1", time.Now().UTC().Add(time.Hour), nil)
	mock.ExpectQuery(regexp.QuoteMeta(tokenSelect)).WithArgs("hash-1").WillReturnRows(rows)

	userID, err := repo.ValidateRefresh(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
}

func TestValidateRefresh_Revoked(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	revoked := time.Now().UTC().Add(-time.Minute)
	rows := sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
		AddRow("u-1", time.Now().UTC().Add(time.Hour), revoked)
	mock.ExpectQuery(regexp.QuoteMeta(tokenSelect)).WithArgs("hash-1").WillReturnRows(rows)

	_, err := repo.ValidateRefresh(context.Background(), "hash-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateRefresh_Expired(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	rows := sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
		AddRow("u-1", time.Now().UTC().Add(-time.Minute), nil)
	mock.ExpectQuery(regexp.QuoteMeta(tokenSelect)).WithArgs("hash-1").WillReturnRows(rows)

	_, err := repo.ValidateRefresh(context.Background(), "hash-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateRefresh_Unknown(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(tokenSelect)).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}))

	_, err := repo.ValidateRefresh(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateRefresh_DBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(tokenSelect)).WithArgs("hash-1").
		WillReturnError(sql.ErrConnDone)

	// A lost connection must not masquerade as a missing token.
	_, err := repo.ValidateRefresh(context.Background(), "hash-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRevokeAllForUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL")).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.RevokeAllForUser(context.Background(), "u-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
