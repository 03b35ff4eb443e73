package part

import (
	"context"
	"strings"
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

	Applications    []*VehicleApplication
	CrossReferences []*CrossReference
	Images          []*Image
}

func New(sku, name string) *Part {
	now := time.Now()
	return &Part{
		ID:        uuid.New(),
		SKU:       strings.ToUpper(strings.TrimSpace(sku)),
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PrimaryImage returns the image flagged primary, or nil.
func (p *Part) PrimaryImage() *Image {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img
		}
	}
	return nil
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

type Image struct {
	ID        uuid.UUID
	PartID    uuid.UUID
	URL       string
	AltText   string
	SortOrder int
	IsPrimary bool
	CreatedAt time.Time
}

type FindParams struct {
	SKU      string
	Brand    string
	Category string
	Search   string
	Active   *bool
	Limit    int
	Offset   int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Part, error)
	GetBySKU(ctx context.Context, sku string) (*Part, error)
	// GetBySKUs loads every part matching the given SKUs, children
	// included. Missing SKUs are simply absent from the result.
	GetBySKUs(ctx context.Context, skus []string) ([]*Part, error)
	List(ctx context.Context, params *FindParams) ([]*Part, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, p *Part) error
	Update(ctx context.Context, p *Part) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Upsert inserts or updates by SKU and reports whether a new row
	// was created.
	Upsert(ctx context.Context, p *Part) (created bool, err error)
	DeleteBySKUs(ctx context.Context, skus []string) error

	ReplaceApplications(ctx context.Context, partID uuid.UUID, apps []*VehicleApplication) error
	ReplaceCrossReferences(ctx context.Context, partID uuid.UUID, refs []*CrossReference) error
}

type ImageRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Image, error)
	ListByPart(ctx context.Context, partID uuid.UUID) ([]*Image, error)
	Create(ctx context.Context, img *Image) error
	Delete(ctx context.Context, id uuid.UUID) error
	// UnsetPrimary clears the primary flag on every image of the part.
	UnsetPrimary(ctx context.Context, partID uuid.UUID) error
	// SetPrimary flags a single image as primary.
	SetPrimary(ctx context.Context, id uuid.UUID) error
	UpdateSortOrder(ctx context.Context, id uuid.UUID, sortOrder int) error
}
