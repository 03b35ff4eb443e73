package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/entities/importrecord"
	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/importfile"
	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/persistence"
	"github.com/partsdesk/partsdesk/modules/catalog/presentation/controllers/dtos"
	"github.com/partsdesk/partsdesk/modules/catalog/services"
	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/pkg/application"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/configuration"
	"github.com/partsdesk/partsdesk/pkg/httpapi"
	"github.com/partsdesk/partsdesk/pkg/middleware"
	"github.com/partsdesk/partsdesk/pkg/serrors"
)

// ImportController handles bulk uploads and their undo.
type ImportController struct {
	app       application.Application
	importer  *services.ImportService
	rollbacks *services.RollbackService
}

func NewImportController(app application.Application) application.Controller {
	return &ImportController{
		app:       app,
		importer:  app.Service(services.ImportService{}).(*services.ImportService),
		rollbacks: app.Service(services.RollbackService{}).(*services.RollbackService),
	}
}

func (c *ImportController) Key() string {
	return "/api/admin/import"
}

func (c *ImportController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/admin").Subrouter()
	api.Use(
		middleware.RequireUser(),
		middleware.RequireRole(user.RoleAdmin, user.RoleDataManager),
	)

	api.HandleFunc("/import", c.Import).Methods(http.MethodPost)
	api.HandleFunc("/import/history", c.History).Methods(http.MethodGet)
	api.HandleFunc("/rollback/available", c.Available).Methods(http.MethodGet)
	api.HandleFunc("/rollback/{id}/preview", c.Preview).Methods(http.MethodGet)
	api.HandleFunc("/rollback/{id}", c.Rollback).Methods(http.MethodPost)
}

func (c *ImportController) Import(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()

	r.Body = http.MaxBytesReader(w, r.Body, conf.Import.MaxUploadSize)
	if err := r.ParseMultipartForm(conf.Import.MaxUploadSize); err != nil {
		_ = httpapi.WriteError(w, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", "upload exceeds the size limit", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MISSING_FILE", `multipart field "file" is required`, nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "failed to read upload", nil)
		return
	}

	var importedBy *uuid.UUID
	if u, err := composables.UseUser(r.Context()); err == nil {
		importedBy = &u.ID
	}

	rec, err := c.importer.Import(r.Context(), header.Filename, data, importedBy)
	if err != nil {
		writeImportError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, map[string]any{"data": toImportRecordResponse(rec)})
}

func (c *ImportController) History(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.ImportHistoryQuery{}, r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "query string is not valid", nil)
		return
	}
	limit, offset := clampPaging(q.Limit, q.Offset)
	records, total, err := c.importer.History(r.Context(), &importrecord.FindParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		return
	}

	data := make([]dtos.ImportRecordResponse, 0, len(records))
	for _, rec := range records {
		data = append(data, toImportRecordResponse(rec))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"data":  data,
		"count": total,
	})
}

func (c *ImportController) Available(w http.ResponseWriter, r *http.Request) {
	records, err := c.rollbacks.ListAvailable(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		return
	}

	data := make([]dtos.RollbackableImportResponse, 0, len(records))
	for _, rec := range records {
		data = append(data, toRollbackableResponse(rec))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"data":  data,
		"count": len(data),
	})
}

func (c *ImportController) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "id is not a valid UUID", nil)
		return
	}

	preview, err := c.rollbacks.Preview(r.Context(), id)
	if err != nil {
		writeRollbackError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"import":  toRollbackableResponse(preview.Record),
			"changes": preview.Patch,
		},
	})
}

func (c *ImportController) Rollback(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "id is not a valid UUID", nil)
		return
	}

	rec, err := c.rollbacks.Rollback(r.Context(), id)
	if err != nil {
		writeRollbackError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"data": toImportRecordResponse(rec)})
}

func writeImportError(w http.ResponseWriter, err error) {
	var (
		dup    *services.DuplicateSKUError
		rowErr *importfile.RowError
		coded  *serrors.Base
	)
	switch {
	case errors.As(err, &dup):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "DUPLICATE_SKU", dup.Error(), nil)
	case errors.As(err, &rowErr):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ROW", rowErr.Error(), nil)
	case errors.As(err, &coded):
		// UNSUPPORTED_FORMAT, EMPTY_IMPORT, TOO_MANY_ROWS are all client mistakes.
		_ = httpapi.WriteError(w, http.StatusBadRequest, coded.Code, coded.Message, nil)
	default:
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
	}
}

func writeRollbackError(w http.ResponseWriter, err error) {
	var coded *serrors.Base
	switch {
	case errors.Is(err, persistence.ErrImportNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "IMPORT_NOT_FOUND", "import record not found", nil)
	case errors.As(err, &coded):
		_ = httpapi.WriteError(w, http.StatusConflict, coded.Code, coded.Message, nil)
	default:
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
	}
}
