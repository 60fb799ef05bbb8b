package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[string]int{
		CodeValidation:         http.StatusBadRequest,
		CodeListingInactive:    http.StatusBadRequest,
		CodeUnauthenticated:    http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeAccountDeactivated: http.StatusForbidden,
		CodeNotFound:           http.StatusNotFound,
		CodeEmailTaken:         http.StatusConflict,
		CodeConflict:           http.StatusConflict,
		CodeRateLimited:        http.StatusTooManyRequests,
		CodeInternal:           http.StatusInternalServerError,
		"SOMETHING_ELSE":       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, statusFor(code), code)
	}
}

func TestEnvelopeShape(t *testing.T) {
	e := echo.New()
	c, rec := doJSON(e, http.MethodGet, "/", "")

	require.NoError(t, OK(c, http.StatusOK, echo.Map{"hello": "world"}))
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.NotEmpty(t, env.Timestamp)

	c, rec = doJSON(e, http.MethodGet, "/", "")
	require.NoError(t, Fail(c, CodeNotFound, "Listing not found"))
	env = decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	require.NotNil(t, env.Error)
	assert.Equal(t, CodeNotFound, env.Error.Code)
	assert.Equal(t, "Listing not found", env.Error.Message)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = NewPagination(1, 10, 5)
	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = NewPagination(1, 10, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = NewPagination(3, 10, 30)
	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
}
