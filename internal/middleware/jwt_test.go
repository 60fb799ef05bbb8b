package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwangik/farm-produce-market/internal/repository"
	"github.com/mwangik/farm-produce-market/internal/utils"
)

const testSecret = "test-secret"

func okHandler(c echo.Context) error {
	u := CurrentUser(c)
	return c.JSON(http.StatusOK, echo.Map{"id": u.ID, "role": u.Role})
}

func newUsersMock(t *testing.T) (*repository.UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewUserRepo(db), mock
}

func runJWT(t *testing.T, users *repository.UserRepo, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := JWTAuth(testSecret, users)(okHandler)(c)
	require.NoError(t, err)
	return rec
}

func activeUserRows(id string, active bool) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "full_name", "phone_number",
		"role", "is_active", "created_at", "updated_at",
	}).AddRow(id, "jane@example.com", "hash", "Jane Farmer", "+254712345678", "FARMER", active, now, now)
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	users, _ := newUsersMock(t)
	rec := runJWT(t, users, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHENTICATED")
}

func TestJWTAuth_MalformedToken(t *testing.T) {
	users, _ := newUsersMock(t)
	rec := runJWT(t, users, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	users, _ := newUsersMock(t)
	tok, err := utils.NewAccessToken("other-secret", "u-1", "FARMER", 5)
	require.NoError(t, err)
	rec := runJWT(t, users, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_DeactivatedSubject(t *testing.T) {
	users, mock := newUsersMock(t)
	mock.ExpectQuery("SELECT .* FROM users WHERE id").
		WillReturnRows(activeUserRows("u-1", false))

	tok, err := utils.NewAccessToken(testSecret, "u-1", "FARMER", 5)
	require.NoError(t, err)
	rec := runJWT(t, users, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_LoadsUser(t *testing.T) {
	users, mock := newUsersMock(t)
	mock.ExpectQuery("SELECT .* FROM users WHERE id").
		WillReturnRows(activeUserRows("u-1", true))

	tok, err := utils.NewAccessToken(testSecret, "u-1", "FARMER", 5)
	require.NoError(t, err)
	rec := runJWT(t, users, "Bearer "+tok.Token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"u-1"`)
	assert.Contains(t, rec.Body.String(), `"FARMER"`)
}
