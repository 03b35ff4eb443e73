package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/modules/core/domain/entities/session"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/configuration"
	"github.com/partsdesk/partsdesk/pkg/httpapi"
)

// SessionAuthenticator resolves a session token to its user. Implemented
// by core's AuthService.
type SessionAuthenticator interface {
	Authorize(ctx context.Context, token string) (*user.User, *session.Session, error)
}

// ProvideUser resolves the session cookie and, when valid, attaches the
// user and session to the request context. It never rejects: that is
// RequireUser's job.
func ProvideUser(auth SessionAuthenticator) mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(conf.SidCookieKey)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			u, sess, err := auth.Authorize(r.Context(), cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := composables.WithUser(r.Context(), u)
			ctx = composables.WithSession(ctx, sess)
			if params, ok := composables.UseParams(ctx); ok {
				params.Authenticated = true
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests without an authenticated, active user.
func RequireUser() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := composables.UseUser(r.Context())
			if err != nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
				return
			}
			if !u.Active {
				_ = httpapi.WriteError(w, http.StatusForbidden, "ACCOUNT_INACTIVE", "account is deactivated", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects authenticated users whose role is not allowed.
func RequireRole(roles ...user.Role) mux.MiddlewareFunc {
	allowed := make(map[user.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := composables.UseUser(r.Context())
			if err != nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
				return
			}
			if _, ok := allowed[u.Role]; !ok {
				_ = httpapi.WriteError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
