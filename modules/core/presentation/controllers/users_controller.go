package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/modules/core/domain/entities/authlog"
	"github.com/partsdesk/partsdesk/modules/core/infrastructure/persistence"
	"github.com/partsdesk/partsdesk/modules/core/presentation/controllers/dtos"
	"github.com/partsdesk/partsdesk/modules/core/services"
	"github.com/partsdesk/partsdesk/pkg/application"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/configuration"
	"github.com/partsdesk/partsdesk/pkg/httpapi"
	"github.com/partsdesk/partsdesk/pkg/middleware"
)

type UsersController struct {
	app   application.Application
	users *services.UserService
	auth  *services.AuthService
}

func NewUsersController(app application.Application) application.Controller {
	return &UsersController{
		app:   app,
		users: app.Service(services.UserService{}).(*services.UserService),
		auth:  app.Service(services.AuthService{}).(*services.AuthService),
	}
}

func (c *UsersController) Key() string {
	return "/api/admin/users"
}

func (c *UsersController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/admin/users").Subrouter()
	api.Use(
		middleware.RequireUser(),
		middleware.RequireRole(user.RoleAdmin),
	)

	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	api.HandleFunc("/{id}", c.Update).Methods(http.MethodPatch)
	api.HandleFunc("/{id}/active", c.SetActive).Methods(http.MethodPut)

	logs := r.PathPrefix("/api/admin/auth-logs").Subrouter()
	logs.Use(
		middleware.RequireUser(),
		middleware.RequireRole(user.RoleAdmin),
	)
	logs.HandleFunc("", c.AuthLogs).Methods(http.MethodGet)
}

func (c *UsersController) AuthLogs(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.AuthLogQuery{}, r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "query string is not valid", nil)
		return
	}
	limit, offset := clampPaging(q.Limit, q.Offset)
	params := &authlog.FindParams{
		Email:   q.Email,
		Success: q.Success,
		Limit:   limit,
		Offset:  offset,
	}

	logs, total, err := c.auth.LoginHistory(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		return
	}

	data := make([]*dtos.AuthLogResponse, 0, len(logs))
	for _, entry := range logs {
		data = append(data, toAuthLogResponse(entry))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"data":  data,
		"count": total,
	})
}

func clampPaging(limit, offset int) (int, int) {
	conf := configuration.Use()
	if limit <= 0 {
		limit = conf.PageSize
	}
	if limit > conf.MaxPageSize {
		limit = conf.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.UserListQuery{}, r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "query string is not valid", nil)
		return
	}
	limit, offset := clampPaging(q.Limit, q.Offset)
	params := &user.FindParams{
		Search: q.Search,
		Role:   user.Role(q.Role),
		Limit:  limit,
		Offset: offset,
	}

	users, total, err := c.users.List(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		return
	}

	data := make([]*dtos.UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, toUserResponse(u))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"data":  data,
		"count": total,
	})
}

func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.CreateUserDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	u := user.New(dto.Email, dto.FirstName, dto.LastName, user.Role(dto.Role))
	if err := c.users.Create(r.Context(), u, dto.Password); err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, map[string]any{"data": toUserResponse(u)})
}

func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "id is not a valid UUID", nil)
		return
	}
	u, err := c.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, persistence.ErrUserNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
			return
		}
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"data": toUserResponse(u)})
}

func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "id is not a valid UUID", nil)
		return
	}

	dto := &dtos.UpdateUserDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	u, err := c.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, persistence.ErrUserNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
			return
		}
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		return
	}

	if dto.FirstName != "" {
		u.FirstName = dto.FirstName
	}
	if dto.LastName != "" {
		u.LastName = dto.LastName
	}
	if dto.Role != "" {
		u.Role = user.Role(dto.Role)
	}
	if err := c.users.Update(r.Context(), u); err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"data": toUserResponse(u)})
}

func (c *UsersController) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "id is not a valid UUID", nil)
		return
	}

	dto := &dtos.SetActiveDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	u, err := c.users.SetActive(r.Context(), id, *dto.Active)
	if err != nil {
		if errors.Is(err, persistence.ErrUserNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
			return
		}
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"data": toUserResponse(u)})
}
