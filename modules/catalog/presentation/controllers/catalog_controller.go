package controllers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/persistence"
	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/query"
	"github.com/partsdesk/partsdesk/modules/catalog/presentation/controllers/dtos"
	"github.com/partsdesk/partsdesk/modules/catalog/services"
	"github.com/partsdesk/partsdesk/pkg/application"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/httpapi"
)

// CatalogController serves the public, read-only side of the catalog.
// No session is required here.
type CatalogController struct {
	app    application.Application
	parts  *services.PartService
	search *query.PartSearch
}

func NewCatalogController(app application.Application, search *query.PartSearch) application.Controller {
	return &CatalogController{
		app:    app,
		parts:  app.Service(services.PartService{}).(*services.PartService),
		search: search,
	}
}

func (c *CatalogController) Key() string {
	return "/api/catalog"
}

func (c *CatalogController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/catalog").Subrouter()
	api.HandleFunc("/parts", c.Search).Methods(http.MethodGet)
	api.HandleFunc("/parts/{sku}", c.GetBySKU).Methods(http.MethodGet)
}

func (c *CatalogController) Search(w http.ResponseWriter, r *http.Request) {
	q, err := composables.UseQuery(&dtos.CatalogSearchQuery{}, r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "query string is not valid", nil)
		return
	}
	limit, offset := clampPaging(q.Limit, q.Offset)

	hits, err := c.search.Search(r.Context(), query.SearchParams{
		Term:   q.Term,
		Make:   q.Make,
		Model:  q.Model,
		Year:   q.Year,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		return
	}

	data := make([]dtos.PartListItem, 0, len(hits))
	for _, hit := range hits {
		data = append(data, toPartListItem(hit))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (c *CatalogController) GetBySKU(w http.ResponseWriter, r *http.Request) {
	p, err := c.parts.GetBySKU(r.Context(), mux.Vars(r)["sku"])
	if err != nil {
		if errors.Is(err, persistence.ErrPartNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "PART_NOT_FOUND", "part not found", nil)
			return
		}
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
		return
	}
	if !p.Active {
		// Inactive parts are hidden from the public catalog.
		_ = httpapi.WriteError(w, http.StatusNotFound, "PART_NOT_FOUND", "part not found", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"data": toPartResponse(p)})
}
