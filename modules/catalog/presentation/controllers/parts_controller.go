package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/aggregates/part"
	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/persistence"
	"github.com/partsdesk/partsdesk/modules/catalog/presentation/controllers/dtos"
	"github.com/partsdesk/partsdesk/modules/catalog/services"
	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/pkg/application"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/httpapi"
	"github.com/partsdesk/partsdesk/pkg/middleware"
)

// PartsController is the write side of the catalog, open to both
// admins and data managers.
type PartsController struct {
	app    application.Application
	parts  *services.PartService
	images *services.ImageService
}

func NewPartsController(app application.Application) application.Controller {
	return &PartsController{
		app:    app,
		parts:  app.Service(services.PartService{}).(*services.PartService),
		images: app.Service(services.ImageService{}).(*services.ImageService),
	}
}

func (c *PartsController) Key() string {
	return "/api/admin/parts"
}

func (c *PartsController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/admin/parts").Subrouter()
	api.Use(
		middleware.RequireUser(),
		middleware.RequireRole(user.RoleAdmin, user.RoleDataManager),
	)

	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/{sku}", c.Get).Methods(http.MethodGet)
	api.HandleFunc("/{sku}", c.Update).Methods(http.MethodPatch)
	api.HandleFunc("/{sku}", c.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/{sku}/applications", c.ReplaceApplications).Methods(http.MethodPut)
	api.HandleFunc("/{sku}/cross-references", c.ReplaceCrossReferences).Methods(http.MethodPut)

	api.HandleFunc("/{sku}/images", c.ListImages).Methods(http.MethodGet)
	api.HandleFunc("/{sku}/images", c.AddImage).Methods(http.MethodPost)
	api.HandleFunc("/{sku}/images/{imageId}", c.ReorderImage).Methods(http.MethodPatch)
	api.HandleFunc("/{sku}/images/{imageId}", c.RemoveImage).Methods(http.MethodDelete)
	api.HandleFunc("/{sku}/images/{imageId}/primary", c.SetPrimaryImage).Methods(http.MethodPut)
}

func (c *PartsController) ReplaceApplications(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.ReplaceApplicationsDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	p, err := c.parts.SetApplications(r.Context(), mux.Vars(r)["sku"], toApplicationEntities(dto.Applications))
	if err != nil {
		writePartError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"data": toPartResponse(p)})
}

func (c *PartsController) ReplaceCrossReferences(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.ReplaceCrossReferencesDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	p, err := c.parts.SetCrossReferences(r.Context(), mux.Vars(r)["sku"], toCrossReferenceEntities(dto.CrossReferences))
	if err != nil {
		writePartError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"data": toPartResponse(p)})
}

func (c *PartsController) ReorderImage(w http.ResponseWriter, r *http.Request) {
	imageID, err := uuid.Parse(mux.Vars(r)["imageId"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "image id is not a valid UUID", nil)
		return
	}

	dto := &dtos.ReorderImageDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	if err := c.images.Reorder(r.Context(), mux.Vars(r)["sku"], imageID, *dto.SortOrder); err != nil {
		writePartError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (c *PartsController) List(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.PartListQuery{}, r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "query string is not valid", nil)
		return
	}
	limit, offset := clampPaging(q.Limit, q.Offset)

	params := &part.FindParams{
		Brand:    q.Brand,
		Category: q.Category,
		Search:   q.Search,
		Active:   q.Active,
		Limit:    limit,
		Offset:   offset,
	}

	parts, total, err := c.parts.List(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		return
	}

	data := make([]*dtos.PartResponse, 0, len(parts))
	for _, p := range parts {
		data = append(data, toPartResponse(p))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"data":  data,
		"count": total,
	})
}

func (c *PartsController) Create(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.CreatePartDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	p := part.New(dto.SKU, dto.Name)
	p.Description = dto.Description
	p.Category = dto.Category
	p.Brand = dto.Brand
	if dto.Price != "" {
		price, err := decimal.NewFromString(dto.Price)
		if err != nil || price.IsNegative() {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", map[string]string{"Price": "must be a non-negative decimal"})
			return
		}
		p.Price = price
	}
	p.Applications = toApplicationEntities(dto.Applications)
	p.CrossReferences = toCrossReferenceEntities(dto.CrossReferences)

	if err := c.parts.Create(r.Context(), p); err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, map[string]any{"data": toPartResponse(p)})
}

func (c *PartsController) Get(w http.ResponseWriter, r *http.Request) {
	p, err := c.parts.GetBySKU(r.Context(), mux.Vars(r)["sku"])
	if err != nil {
		writePartError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"data": toPartResponse(p)})
}

func (c *PartsController) Update(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.UpdatePartDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	p, err := c.parts.GetBySKU(r.Context(), mux.Vars(r)["sku"])
	if err != nil {
		writePartError(w, err)
		return
	}

	if dto.Name != nil {
		p.Name = *dto.Name
	}
	if dto.Description != nil {
		p.Description = *dto.Description
	}
	if dto.Category != nil {
		p.Category = *dto.Category
	}
	if dto.Brand != nil {
		p.Brand = *dto.Brand
	}
	if dto.Active != nil {
		p.Active = *dto.Active
	}
	if dto.Price != nil {
		price, err := decimal.NewFromString(*dto.Price)
		if err != nil || price.IsNegative() {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", map[string]string{"Price": "must be a non-negative decimal"})
			return
		}
		p.Price = price
	}
	if dto.Applications != nil {
		p.Applications = toApplicationEntities(dto.Applications)
	}
	if dto.CrossReferences != nil {
		p.CrossReferences = toCrossReferenceEntities(dto.CrossReferences)
	}

	if err := c.parts.Update(r.Context(), p); err != nil {
		writePartError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"data": toPartResponse(p)})
}

func (c *PartsController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.parts.Delete(r.Context(), mux.Vars(r)["sku"]); err != nil {
		writePartError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (c *PartsController) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := c.images.ListByPart(r.Context(), mux.Vars(r)["sku"])
	if err != nil {
		writePartError(w, err)
		return
	}
	data := make([]dtos.ImageResponse, 0, len(images))
	for _, img := range images {
		data = append(data, toImageResponse(img))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (c *PartsController) AddImage(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.AddImageDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if fields, ok := dto.Ok(r.Context()); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	img := &part.Image{
		ID:        uuid.New(),
		URL:       dto.URL,
		AltText:   dto.AltText,
		SortOrder: dto.SortOrder,
	}
	if err := c.images.Add(r.Context(), mux.Vars(r)["sku"], img); err != nil {
		writePartError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, map[string]any{"data": toImageResponse(img)})
}

func (c *PartsController) RemoveImage(w http.ResponseWriter, r *http.Request) {
	imageID, err := uuid.Parse(mux.Vars(r)["imageId"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "image id is not a valid UUID", nil)
		return
	}
	if err := c.images.Remove(r.Context(), mux.Vars(r)["sku"], imageID); err != nil {
		writePartError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (c *PartsController) SetPrimaryImage(w http.ResponseWriter, r *http.Request) {
	imageID, err := uuid.Parse(mux.Vars(r)["imageId"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "image id is not a valid UUID", nil)
		return
	}
	if err := c.images.SetPrimary(r.Context(), mux.Vars(r)["sku"], imageID); err != nil {
		writePartError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writePartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, persistence.ErrPartNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "PART_NOT_FOUND", "part not found", nil)
	case errors.Is(err, persistence.ErrImageNotFound), errors.Is(err, services.ErrImageNotInPart):
		_ = httpapi.WriteError(w, http.StatusNotFound, "IMAGE_NOT_FOUND", "image not found for this part", nil)
	default:
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
	}
}

func toApplicationEntities(in []dtos.ApplicationDTO) []*part.VehicleApplication {
	out := make([]*part.VehicleApplication, 0, len(in))
	for _, a := range in {
		yearTo := a.YearTo
		if yearTo == 0 {
			yearTo = a.YearFrom
		}
		out = append(out, &part.VehicleApplication{
			Make:     a.Make,
			Model:    a.Model,
			YearFrom: a.YearFrom,
			YearTo:   yearTo,
			Engine:   a.Engine,
		})
	}
	return out
}

func toCrossReferenceEntities(in []dtos.CrossReferenceDTO) []*part.CrossReference {
	out := make([]*part.CrossReference, 0, len(in))
	for _, ref := range in {
		out = append(out, &part.CrossReference{
			CompetitorBrand: ref.CompetitorBrand,
			CompetitorSKU:   ref.CompetitorSKU,
		})
	}
	return out
}
