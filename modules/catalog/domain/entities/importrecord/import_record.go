package importrecord

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImportRecord is one row of the import history. Snapshot is nil once
// the import has been rolled back or has aged out of the rollback
// window.
type ImportRecord struct {
	ID           uuid.UUID
	Filename     string
	FileSize     int64
	Checksum     string
	RowCount     int
	CreatedCount int
	UpdatedCount int
	ImportedBy   *uuid.UUID
	Snapshot     *Snapshot
	CreatedAt    time.Time
}

// Rollbackable reports whether the record still carries the data
// needed to undo it.
func (r *ImportRecord) Rollbackable() bool {
	return r.Snapshot != nil
}

// Snapshot is the pre-import state of every part the import touched.
// Parts holds the rows as they existed before the import; NewSKUs
// lists the SKUs the import created, which did not exist before and
// are deleted again on rollback.
type Snapshot struct {
	Parts               []SnapshotPart           `json:"parts"`
	VehicleApplications []SnapshotApplication    `json:"vehicleApplications"`
	CrossReferences     []SnapshotCrossReference `json:"crossReferences"`
	NewSKUs             []string                 `json:"newSkus"`
}

type SnapshotPart struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type SnapshotApplication struct {
	PartSKU  string `json:"partSku"`
	Make     string `json:"make"`
	Model    string `json:"model"`
	YearFrom int    `json:"yearFrom"`
	YearTo   int    `json:"yearTo"`
	Engine   string `json:"engine"`
}

type SnapshotCrossReference struct {
	PartSKU         string `json:"partSku"`
	CompetitorBrand string `json:"competitorBrand"`
	CompetitorSKU   string `json:"competitorSku"`
}

type FindParams struct {
	Limit  int
	Offset int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ImportRecord, error)
	List(ctx context.Context, params *FindParams) ([]*ImportRecord, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, rec *ImportRecord) error
	// ListRollbackable returns the newest records that still carry a
	// snapshot, newest first, at most limit of them.
	ListRollbackable(ctx context.Context, limit int) ([]*ImportRecord, error)
	// ClearSnapshot drops the snapshot payload, marking the record as
	// consumed.
	ClearSnapshot(ctx context.Context, id uuid.UUID) error
}
