package controllers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/partsdesk/partsdesk/modules/core/presentation/controllers/dtos"
	"github.com/partsdesk/partsdesk/modules/core/services"
	"github.com/partsdesk/partsdesk/pkg/application"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/configuration"
	"github.com/partsdesk/partsdesk/pkg/httpapi"
)

type AuthController struct {
	app  application.Application
	auth *services.AuthService
}

func NewAuthController(app application.Application) application.Controller {
	return &AuthController{
		app:  app,
		auth: app.Service(services.AuthService{}).(*services.AuthService),
	}
}

func (c *AuthController) Key() string {
	return "/api/auth"
}

func (c *AuthController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/auth").Subrouter()
	api.HandleFunc("/login", c.Login).Methods(http.MethodPost)
	api.HandleFunc("/logout", c.Logout).Methods(http.MethodPost)
	api.HandleFunc("/session", c.Session).Methods(http.MethodGet)

	// The admin password gate lives outside the session namespace.
	r.HandleFunc("/api/admin/auth", c.AdminAuth).Methods(http.MethodPost)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()

	dto := &dtos.LoginDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	u, sess, err := c.auth.Authenticate(r.Context(), dto.Email, dto.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			_ = httpapi.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", nil)
		case errors.Is(err, services.ErrUserInactive):
			_ = httpapi.WriteError(w, http.StatusForbidden, "ACCOUNT_INACTIVE", "account is deactivated", nil)
		default:
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     conf.SidCookieKey,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   conf.GoAppEnvironment == configuration.Production,
		SameSite: http.SameSiteLaxMode,
	})
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"user": toUserResponse(u),
	})
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()

	cookie, err := r.Cookie(conf.SidCookieKey)
	if err == nil && cookie.Value != "" {
		if err := c.auth.Logout(r.Context(), cookie.Value); err != nil {
			composables.UseLogger(r.Context()).WithError(err).Warn("failed to delete session")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     conf.SidCookieKey,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Session reports the authenticated user and profile, mirroring what
// the dashboard needs to route by role.
func (c *AuthController) Session(w http.ResponseWriter, r *http.Request) {
	u, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
		return
	}
	if !u.Active {
		_ = httpapi.WriteError(w, http.StatusForbidden, "ACCOUNT_INACTIVE", "account is deactivated", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{
			"id":    u.ID.String(),
			"email": u.Email,
		},
		"profile": toUserResponse(u),
	})
}

// AdminAuth checks the shared admin password. The password must be
// configured explicitly; there is no development fallback.
func (c *AuthController) AdminAuth(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	if conf.AdminAPIPassword == "" {
		_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "ADMIN_AUTH_DISABLED", "admin password is not configured", nil)
		return
	}

	dto := &dtos.AdminAuthDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	if subtle.ConstantTimeCompare([]byte(dto.Password), []byte(conf.AdminAPIPassword)) != 1 {
		_ = httpapi.WriteJSON(w, http.StatusUnauthorized, map[string]any{"success": false})
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}
