package middleware

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeBody_RedactsCredentials(t *testing.T) {
	body := []byte(`{"email":"jane@example.com","password":"secret","refreshToken":"tok"}`)
	out := sanitizeBody(body, 200)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(out, &meta))
	inner := meta["body"].(map[string]any)
	assert.Equal(t, "jane@example.com", inner["email"])
	assert.Equal(t, "[REDACTED]", inner["password"])
	assert.Equal(t, "[REDACTED]", inner["refreshToken"])
	assert.Equal(t, float64(200), meta["status"])
	assert.NotContains(t, string(out), "secret")
	assert.NotContains(t, string(out), "tok\"")
}

func TestSanitizeBody_NonJSONBody(t *testing.T) {
	out := sanitizeBody([]byte("not json"), 400)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(out, &meta))
	assert.Equal(t, float64(400), meta["status"])
	_, hasBody := meta["body"]
	assert.False(t, hasBody)
}

func TestResourceFromPath(t *testing.T) {
	assert.Equal(t, "listing", resourceFromPath("/api/farmer/listings/:id"))
	assert.Equal(t, "interaction", resourceFromPath("/api/buyer/interactions"))
	assert.Equal(t, "preference", resourceFromPath("/api/buyer/preferences"))
	assert.Equal(t, "auth", resourceFromPath("/api/auth/login"))
	assert.Equal(t, "request", resourceFromPath("/api/something/else"))
}
