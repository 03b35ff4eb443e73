package middleware

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gorilla/mux"

	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/pkg/composables"
)

const (
	LoginPath      = "/login"
	HomePath       = "/"
	AdminPrefix    = "/admin"
	DataPortalPath = "/data-portal"
)

// protectedPrefixes are the page namespaces behind the role gate.
var protectedPrefixes = []string{AdminPrefix, DataPortalPath}

// gateExempt reports whether the gate should ignore a path: API routes
// enforce their own checks, and static assets are public.
func gateExempt(p string) bool {
	if strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/debug/") {
		return true
	}
	// Anything with a file extension is an asset, not a page.
	return path.Ext(p) != ""
}

func isProtected(p string) bool {
	for _, prefix := range protectedPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

// PageGate applies the role-based redirect rules for protected page
// prefixes:
//
//	unauthenticated      -> /login?redirect=<path>
//	inactive profile     -> /
//	data_manager, /admin -> /data-portal
//	admin                -> unrestricted
//
// ProvideUser must run before it.
func PageGate() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := r.URL.Path
			if gateExempt(p) || !isProtected(p) {
				next.ServeHTTP(w, r)
				return
			}

			u, err := composables.UseUser(r.Context())
			if err != nil {
				redirect := LoginPath + "?redirect=" + url.QueryEscape(p)
				http.Redirect(w, r, redirect, http.StatusFound)
				return
			}
			if !u.Active {
				http.Redirect(w, r, HomePath, http.StatusFound)
				return
			}
			if u.Role == user.RoleDataManager && strings.HasPrefix(p, AdminPrefix) {
				http.Redirect(w, r, DataPortalPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
