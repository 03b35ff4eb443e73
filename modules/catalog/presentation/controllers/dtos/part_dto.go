package dtos

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/partsdesk/partsdesk/pkg/constants"
)

func validationErrors(d interface{}) (map[string]string, bool) {
	errorMessages := map[string]string{}
	errs := constants.Validate.Struct(d)
	if errs == nil {
		return errorMessages, true
	}
	for _, err := range errs.(validator.ValidationErrors) {
		errorMessages[err.Field()] = fmt.Sprintf("failed on %q", err.Tag())
	}
	return errorMessages, len(errorMessages) == 0
}

type ApplicationDTO struct {
	Make     string `json:"make" validate:"required"`
	Model    string `json:"model" validate:"required"`
	YearFrom int    `json:"yearFrom" validate:"omitempty,min=1900"`
	YearTo   int    `json:"yearTo" validate:"omitempty,gtefield=YearFrom"`
	Engine   string `json:"engine"`
}

type CrossReferenceDTO struct {
	CompetitorBrand string `json:"competitorBrand" validate:"required"`
	CompetitorSKU   string `json:"competitorSku" validate:"required"`
}

type CreatePartDTO struct {
	SKU         string `json:"sku" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"max=128"`
	Brand       string `json:"brand" validate:"max=128"`
	Price       string `json:"price" validate:"omitempty,numeric"`

	Applications    []ApplicationDTO    `json:"applications" validate:"dive"`
	CrossReferences []CrossReferenceDTO `json:"crossReferences" validate:"dive"`
}

func (d *CreatePartDTO) Ok(_ context.Context) (map[string]string, bool) {
	return validationErrors(d)
}

type UpdatePartDTO struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,max=128"`
	Brand       *string `json:"brand" validate:"omitempty,max=128"`
	Price       *string `json:"price" validate:"omitempty,numeric"`
	Active      *bool   `json:"active"`

	Applications    []ApplicationDTO    `json:"applications" validate:"omitempty,dive"`
	CrossReferences []CrossReferenceDTO `json:"crossReferences" validate:"omitempty,dive"`
}

func (d *UpdatePartDTO) Ok(_ context.Context) (map[string]string, bool) {
	return validationErrors(d)
}

type AddImageDTO struct {
	URL       string `json:"url" validate:"required,url"`
	AltText   string `json:"altText" validate:"max=255"`
	SortOrder int    `json:"sortOrder" validate:"min=0"`
}

func (d *AddImageDTO) Ok(_ context.Context) (map[string]string, bool) {
	return validationErrors(d)
}

type ReorderImageDTO struct {
	SortOrder *int `json:"sortOrder" validate:"required,min=0"`
}

func (d *ReorderImageDTO) Ok(_ context.Context) (map[string]string, bool) {
	return validationErrors(d)
}

type ReplaceApplicationsDTO struct {
	Applications []ApplicationDTO `json:"applications" validate:"required,dive"`
}

func (d *ReplaceApplicationsDTO) Ok(_ context.Context) (map[string]string, bool) {
	return validationErrors(d)
}

type ReplaceCrossReferencesDTO struct {
	CrossReferences []CrossReferenceDTO `json:"crossReferences" validate:"required,dive"`
}

func (d *ReplaceCrossReferencesDTO) Ok(_ context.Context) (map[string]string, bool) {
	return validationErrors(d)
}

type ImageResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	AltText   string `json:"altText"`
	SortOrder int    `json:"sortOrder"`
	IsPrimary bool   `json:"isPrimary"`
}

type ApplicationResponse struct {
	Make     string `json:"make"`
	Model    string `json:"model"`
	YearFrom int    `json:"yearFrom"`
	YearTo   int    `json:"yearTo"`
	Engine   string `json:"engine,omitempty"`
}

type CrossReferenceResponse struct {
	CompetitorBrand string `json:"competitorBrand"`
	CompetitorSKU   string `json:"competitorSku"`
}

type PartResponse struct {
	ID          string `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	Price       string `json:"price"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`

	Applications    []ApplicationResponse    `json:"applications"`
	CrossReferences []CrossReferenceResponse `json:"crossReferences"`
	Images          []ImageResponse          `json:"images"`
}

// PartListItem is the flat row served by the public search endpoint.
type PartListItem struct {
	ID              string `json:"id"`
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	Brand           string `json:"brand"`
	Price           string `json:"price"`
	PrimaryImageURL string `json:"primaryImageUrl,omitempty"`
}
