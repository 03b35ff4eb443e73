package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Part struct {
	ID          uuid.UUID
	SKU         string
	Name        string
	Description string
	Category    string
	Brand       string
	Price       decimal.Decimal
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type VehicleApplication struct {
	ID       uuid.UUID
	PartID   uuid.UUID
	Make     string
	Model    string
	YearFrom int
	YearTo   int
	Engine   string
}

type CrossReference struct {
	ID              uuid.UUID
	PartID          uuid.UUID
	CompetitorBrand string
	CompetitorSKU   string
}

type PartImage struct {
	ID        uuid.UUID
	PartID    uuid.UUID
	URL       string
	AltText   string
	SortOrder int
	IsPrimary bool
	CreatedAt time.Time
}

type ImportHistory struct {
	ID           uuid.UUID
	Filename     string
	FileSize     int64
	Checksum     string
	RowCount     int
	CreatedCount int
	UpdatedCount int
	ImportedBy   *uuid.UUID
	Snapshot     []byte
	CreatedAt    time.Time
}
