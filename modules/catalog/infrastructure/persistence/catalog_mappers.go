package persistence

import (
	"encoding/json"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/aggregates/part"
	"github.com/partsdesk/partsdesk/modules/catalog/domain/entities/importrecord"
	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/persistence/models"
)

func toDomainPart(dbRow *models.Part) *part.Part {
	return &part.Part{
		ID:          dbRow.ID,
		SKU:         dbRow.SKU,
		Name:        dbRow.Name,
		Description: dbRow.Description,
		Category:    dbRow.Category,
		Brand:       dbRow.Brand,
		Price:       dbRow.Price,
		Active:      dbRow.Active,
		CreatedAt:   dbRow.CreatedAt,
		UpdatedAt:   dbRow.UpdatedAt,
	}
}

func toDBPart(p *part.Part) *models.Part {
	return &models.Part{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       p.Price,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toDomainApplication(dbRow *models.VehicleApplication) *part.VehicleApplication {
	return &part.VehicleApplication{
		ID:       dbRow.ID,
		PartID:   dbRow.PartID,
		Make:     dbRow.Make,
		Model:    dbRow.Model,
		YearFrom: dbRow.YearFrom,
		YearTo:   dbRow.YearTo,
		Engine:   dbRow.Engine,
	}
}

func toDomainCrossReference(dbRow *models.CrossReference) *part.CrossReference {
	return &part.CrossReference{
		ID:              dbRow.ID,
		PartID:          dbRow.PartID,
		CompetitorBrand: dbRow.CompetitorBrand,
		CompetitorSKU:   dbRow.CompetitorSKU,
	}
}

func toDomainImage(dbRow *models.PartImage) *part.Image {
	return &part.Image{
		ID:        dbRow.ID,
		PartID:    dbRow.PartID,
		URL:       dbRow.URL,
		AltText:   dbRow.AltText,
		SortOrder: dbRow.SortOrder,
		IsPrimary: dbRow.IsPrimary,
		CreatedAt: dbRow.CreatedAt,
	}
}

func toDomainImportRecord(dbRow *models.ImportHistory) (*importrecord.ImportRecord, error) {
	rec := &importrecord.ImportRecord{
		ID:           dbRow.ID,
		Filename:     dbRow.Filename,
		FileSize:     dbRow.FileSize,
		Checksum:     dbRow.Checksum,
		RowCount:     dbRow.RowCount,
		CreatedCount: dbRow.CreatedCount,
		UpdatedCount: dbRow.UpdatedCount,
		ImportedBy:   dbRow.ImportedBy,
		CreatedAt:    dbRow.CreatedAt,
	}
	if len(dbRow.Snapshot) > 0 {
		var snap importrecord.Snapshot
		if err := json.Unmarshal(dbRow.Snapshot, &snap); err != nil {
			return nil, err
		}
		rec.Snapshot = &snap
	}
	return rec, nil
}

func toDBImportRecord(rec *importrecord.ImportRecord) (*models.ImportHistory, error) {
	dbRow := &models.ImportHistory{
		ID:           rec.ID,
		Filename:     rec.Filename,
		FileSize:     rec.FileSize,
		Checksum:     rec.Checksum,
		RowCount:     rec.RowCount,
		CreatedCount: rec.CreatedCount,
		UpdatedCount: rec.UpdatedCount,
		ImportedBy:   rec.ImportedBy,
		CreatedAt:    rec.CreatedAt,
	}
	if rec.Snapshot != nil {
		data, err := json.Marshal(rec.Snapshot)
		if err != nil {
			return nil, err
		}
		dbRow.Snapshot = data
	}
	return dbRow, nil
}
