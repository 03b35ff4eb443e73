package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AdminAuth must refuse to work at all when no password is configured,
// rather than falling back to a default.
func TestAdminAuthDisabledWithoutPassword(t *testing.T) {
	c := &AuthController{}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth", strings.NewReader(`{"password":"anything"}`))
	rec := httptest.NewRecorder()
	c.AdminAuth(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ADMIN_AUTH_DISABLED", body["code"])
}
