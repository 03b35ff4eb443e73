// Package query holds read-only lookups for the public catalog API.
// They bypass the aggregate repositories and read flat rows tuned for
// listing pages.
package query

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PartHit struct {
	ID              string          `db:"id"`
	SKU             string          `db:"sku"`
	Name            string          `db:"name"`
	Category        string          `db:"category"`
	Brand           string          `db:"brand"`
	Price           decimal.Decimal `db:"price"`
	PrimaryImageURL sql.NullString  `db:"primary_image_url"`
}

type SearchParams struct {
	Term   string
	Make   string
	Model  string
	Year   int
	Limit  int
	Offset int
}

type PartSearch struct {
	db *sqlx.DB
}

func NewPartSearch(db *sqlx.DB) *PartSearch {
	return &PartSearch{db: db}
}

const searchQuery = `
SELECT p.id, p.sku, p.name, p.category, p.brand, p.price, pi.url AS primary_image_url
FROM parts p
LEFT JOIN part_images pi ON pi.part_id = p.id AND pi.is_primary
WHERE p.active
  AND ($1 = '' OR p.sku ILIKE '%' || $1 || '%' OR p.name ILIKE '%' || $1 || '%' OR EXISTS (
      SELECT 1 FROM cross_references cr
      WHERE cr.part_id = p.id AND cr.competitor_sku ILIKE '%' || $1 || '%'
  ))
  AND ($2 = '' OR EXISTS (
      SELECT 1 FROM vehicle_applications va
      WHERE va.part_id = p.id
        AND va.make ILIKE $2
        AND ($3 = '' OR va.model ILIKE $3)
        AND ($4 = 0 OR ($4 BETWEEN va.year_from AND va.year_to))
  ))
ORDER BY p.sku
LIMIT $5 OFFSET $6`

// Search matches the term against SKU, name and competitor SKUs, and
// optionally narrows by vehicle fitment.
func (s *PartSearch) Search(ctx context.Context, params SearchParams) ([]PartHit, error) {
	hits := []PartHit{}
	err := s.db.SelectContext(
		ctx,
		&hits,
		searchQuery,
		params.Term,
		params.Make,
		params.Model,
		params.Year,
		params.Limit,
		params.Offset,
	)
	return hits, err
}
