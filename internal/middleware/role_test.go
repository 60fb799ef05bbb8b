package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRole(t *testing.T, role string, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set("role", role)
	}
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	require.NoError(t, RequireRole(allowed...)(next)(c))
	return rec
}

func TestRequireRole(t *testing.T) {
	assert.Equal(t, http.StatusOK, runRole(t, "FARMER", "FARMER").Code)
	assert.Equal(t, http.StatusOK, runRole(t, "BUYER", "FARMER", "BUYER").Code)
	assert.Equal(t, http.StatusForbidden, runRole(t, "BUYER", "FARMER").Code)
	assert.Equal(t, http.StatusForbidden, runRole(t, "", "FARMER").Code)
}

func TestRequireRole_Body(t *testing.T) {
	rec := runRole(t, "BUYER", "FARMER")
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")
	assert.Contains(t, rec.Body.String(), `"success":false`)
}
