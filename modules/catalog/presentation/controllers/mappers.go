package controllers

import (
	"time"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/aggregates/part"
	"github.com/partsdesk/partsdesk/modules/catalog/domain/entities/importrecord"
	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/query"
	"github.com/partsdesk/partsdesk/modules/catalog/presentation/controllers/dtos"
)

func toPartResponse(p *part.Part) *dtos.PartResponse {
	resp := &dtos.PartResponse{
		ID:          p.ID.String(),
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       p.Price.StringFixed(2),
		Active:      p.Active,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),

		Applications:    []dtos.ApplicationResponse{},
		CrossReferences: []dtos.CrossReferenceResponse{},
		Images:          []dtos.ImageResponse{},
	}
	for _, a := range p.Applications {
		resp.Applications = append(resp.Applications, dtos.ApplicationResponse{
			Make:     a.Make,
			Model:    a.Model,
			YearFrom: a.YearFrom,
			YearTo:   a.YearTo,
			Engine:   a.Engine,
		})
	}
	for _, ref := range p.CrossReferences {
		resp.CrossReferences = append(resp.CrossReferences, dtos.CrossReferenceResponse{
			CompetitorBrand: ref.CompetitorBrand,
			CompetitorSKU:   ref.CompetitorSKU,
		})
	}
	for _, img := range p.Images {
		resp.Images = append(resp.Images, toImageResponse(img))
	}
	return resp
}

func toImageResponse(img *part.Image) dtos.ImageResponse {
	return dtos.ImageResponse{
		ID:        img.ID.String(),
		URL:       img.URL,
		AltText:   img.AltText,
		SortOrder: img.SortOrder,
		IsPrimary: img.IsPrimary,
	}
}

func toPartListItem(hit query.PartHit) dtos.PartListItem {
	item := dtos.PartListItem{
		ID:       hit.ID,
		SKU:      hit.SKU,
		Name:     hit.Name,
		Category: hit.Category,
		Brand:    hit.Brand,
		Price:    hit.Price.StringFixed(2),
	}
	if hit.PrimaryImageURL.Valid {
		item.PrimaryImageURL = hit.PrimaryImageURL.String
	}
	return item
}

func toImportRecordResponse(rec *importrecord.ImportRecord) dtos.ImportRecordResponse {
	resp := dtos.ImportRecordResponse{
		ID:           rec.ID.String(),
		Filename:     rec.Filename,
		FileSize:     rec.FileSize,
		Checksum:     rec.Checksum,
		RowCount:     rec.RowCount,
		CreatedCount: rec.CreatedCount,
		UpdatedCount: rec.UpdatedCount,
		Rollbackable: rec.Rollbackable(),
		CreatedAt:    rec.CreatedAt.Format(time.RFC3339),
	}
	if rec.ImportedBy != nil {
		resp.ImportedBy = rec.ImportedBy.String()
	}
	return resp
}

func toRollbackableResponse(rec *importrecord.ImportRecord) dtos.RollbackableImportResponse {
	resp := dtos.RollbackableImportResponse{
		ImportRecordResponse: toImportRecordResponse(rec),
	}
	if rec.Snapshot != nil {
		resp.CapturedParts = len(rec.Snapshot.Parts)
		resp.CapturedApplications = len(rec.Snapshot.VehicleApplications)
		resp.CapturedCrossReferences = len(rec.Snapshot.CrossReferences)
		resp.DeletedParts = len(rec.Snapshot.NewSKUs)
	}
	return resp
}
