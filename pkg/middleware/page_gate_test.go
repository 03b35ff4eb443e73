package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/pkg/composables"
)

func gateRequest(t *testing.T, target string, u *user.User) *httptest.ResponseRecorder {
	t.Helper()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := PageGate()(okHandler)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if u != nil {
		req = req.WithContext(composables.WithUser(req.Context(), u))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPageGate_UnauthenticatedRedirectsToLogin(t *testing.T) {
	rec := gateRequest(t, "/admin/parts", nil)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?redirect=%2Fadmin%2Fparts", rec.Header().Get("Location"))
}

func TestPageGate_InactiveRedirectsHome(t *testing.T) {
	u := user.New("dm@example.com", "Dana", "Manager", user.RoleDataManager)
	u.Active = false

	rec := gateRequest(t, "/data-portal/imports", u)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestPageGate_DataManagerOnAdminRedirectsToDataPortal(t *testing.T) {
	u := user.New("dm@example.com", "Dana", "Manager", user.RoleDataManager)

	rec := gateRequest(t, "/admin/users", u)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/data-portal", rec.Header().Get("Location"))
}

func TestPageGate_DataManagerOnDataPortalAllowed(t *testing.T) {
	u := user.New("dm@example.com", "Dana", "Manager", user.RoleDataManager)

	rec := gateRequest(t, "/data-portal/imports", u)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPageGate_AdminUnrestricted(t *testing.T) {
	u := user.New("admin@example.com", "Ada", "Admin", user.RoleAdmin)

	for _, target := range []string{"/admin", "/admin/users", "/data-portal"} {
		rec := gateRequest(t, target, u)
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}
}

func TestPageGate_ExemptPaths(t *testing.T) {
	// API routes, assets and unprotected pages pass through untouched.
	for _, target := range []string{"/api/admin/parts", "/static/app.css", "/admin/logo.png", "/catalog", "/"} {
		rec := gateRequest(t, target, nil)
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}
}
