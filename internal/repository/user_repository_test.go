package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func userRow(id, email string, active bool) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "full_name", "phone_number",
		"role", "is_active", "created_at", "updated_at",
	}).AddRow(id, email, "$2a$04$hash", "Jane Farmer", "+254712345678", "FARMER", active, now, now)
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'jane@example.com' for key 'users.email'"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), RegisterParams{
		Email: "Jane@Example.com", Password: "secret", FullName: "Jane Farmer",
		PhoneNumber: "+254712345678", Role: "FARMER", BcryptCost: 4,
	})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_FoldsEmailAndWritesProfile(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	loc := "Nakuru"
	size := 2.5

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "jane@example.com", sqlmock.AnyArg(),
			"Jane Farmer", "+254712345678", "FARMER").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_profiles")).
		WithArgs(sqlmock.AnyArg(), "Nakuru", 2.5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE id=?")).
		WillReturnRows(userRow("u-1", "jane@example.com", true))

	u, err := repo.Create(context.Background(), RegisterParams{
		Email: "  Jane@Example.COM ", Password: "secret", FullName: "Jane Farmer",
		PhoneNumber: "+254712345678", Role: "FARMER",
		Location: &loc, FarmSize: &size, BcryptCost: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmail_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userColumns+" FROM users WHERE email=?")).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "Ghost@Example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetProfile_MissingRowIsEmpty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, location, farm_size FROM user_profiles")).
		WithArgs("u-1").
		WillReturnError(sql.ErrNoRows)

	p, err := repo.GetProfile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", p.UserID)
	assert.Nil(t, p.Location)
	assert.Nil(t, p.FarmSize)
}

func TestUserUpdatePassword_MissingUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash=? WHERE id=?")).
		WithArgs("newhash", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "ghost", "newhash")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserUpdateProfile_OnlySuppliedFields(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	name := "Jane K"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET full_name=? WHERE id=?")).
		WithArgs(name, "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateProfile(context.Background(), "u-1", ProfilePatch{FullName: &name})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
