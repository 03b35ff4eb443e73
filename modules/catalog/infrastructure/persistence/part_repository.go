package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/aggregates/part"
	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/persistence/models"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/repo"
)

var ErrPartNotFound = errors.New("part not found")

const partColumns = "id, sku, name, description, category, brand, price, active, created_at, updated_at"

type PartRepository struct{}

func NewPartRepository() part.Repository {
	return &PartRepository{}
}

func scanPart(row pgx.Row) (*part.Part, error) {
	var dbRow models.Part
	if err := row.Scan(
		&dbRow.ID,
		&dbRow.SKU,
		&dbRow.Name,
		&dbRow.Description,
		&dbRow.Category,
		&dbRow.Brand,
		&dbRow.Price,
		&dbRow.Active,
		&dbRow.CreatedAt,
		&dbRow.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartNotFound
		}
		return nil, err
	}
	return toDomainPart(&dbRow), nil
}

func (r *PartRepository) GetByID(ctx context.Context, id uuid.UUID) (*part.Part, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	p, err := scanPart(tx.QueryRow(
		ctx,
		`SELECT `+partColumns+` FROM parts WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, []*part.Part{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PartRepository) GetBySKU(ctx context.Context, sku string) (*part.Part, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	p, err := scanPart(tx.QueryRow(
		ctx,
		`SELECT `+partColumns+` FROM parts WHERE UPPER(sku) = UPPER($1)`,
		sku,
	))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, []*part.Part{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PartRepository) GetBySKUs(ctx context.Context, skus []string) ([]*part.Part, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(
		ctx,
		`SELECT `+partColumns+` FROM parts WHERE sku = ANY($1) ORDER BY sku`,
		skus,
	)
	if err != nil {
		return nil, err
	}
	parts, err := collectParts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, parts); err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *PartRepository) List(ctx context.Context, params *part.FindParams) ([]*part.Part, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildPartFilters(params)
	query := `SELECT ` + partColumns + ` FROM parts WHERE ` + strings.Join(where, " AND ") + ` ORDER BY sku`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	parts, err := collectParts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, parts); err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *PartRepository) Count(ctx context.Context, params *part.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildPartFilters(params)

	var count int64
	if err := tx.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM parts WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PartRepository) Create(ctx context.Context, p *part.Part) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	dbRow := toDBPart(p)
	if dbRow.CreatedAt.IsZero() {
		dbRow.CreatedAt = time.Now()
	}
	dbRow.UpdatedAt = dbRow.CreatedAt

	return tx.QueryRow(
		ctx,
		`INSERT INTO parts (id, sku, name, description, category, brand, price, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at, updated_at`,
		dbRow.ID,
		dbRow.SKU,
		dbRow.Name,
		dbRow.Description,
		dbRow.Category,
		dbRow.Brand,
		dbRow.Price,
		dbRow.Active,
		dbRow.CreatedAt,
		dbRow.UpdatedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PartRepository) Update(ctx context.Context, p *part.Part) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	dbRow := toDBPart(p)
	tag, err := tx.Exec(
		ctx,
		`UPDATE parts
		 SET sku = $2, name = $3, description = $4, category = $5, brand = $6, price = $7, active = $8, updated_at = now()
		 WHERE id = $1`,
		dbRow.ID,
		dbRow.SKU,
		dbRow.Name,
		dbRow.Description,
		dbRow.Category,
		dbRow.Brand,
		dbRow.Price,
		dbRow.Active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPartNotFound
	}
	return nil
}

func (r *PartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM parts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPartNotFound
	}
	return nil
}

func (r *PartRepository) Upsert(ctx context.Context, p *part.Part) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	dbRow := toDBPart(p)
	if dbRow.CreatedAt.IsZero() {
		dbRow.CreatedAt = time.Now()
	}

	// xmax = 0 only on freshly inserted rows, which is how we tell an
	// insert from a conflict-update.
	var created bool
	err = tx.QueryRow(
		ctx,
		`INSERT INTO parts (id, sku, name, description, category, brand, price, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 ON CONFLICT (sku) DO UPDATE
		 SET name = EXCLUDED.name,
		     description = EXCLUDED.description,
		     category = EXCLUDED.category,
		     brand = EXCLUDED.brand,
		     price = EXCLUDED.price,
		     active = EXCLUDED.active,
		     updated_at = now()
		 RETURNING id, (xmax = 0)`,
		dbRow.ID,
		dbRow.SKU,
		dbRow.Name,
		dbRow.Description,
		dbRow.Category,
		dbRow.Brand,
		dbRow.Price,
		dbRow.Active,
		dbRow.CreatedAt,
	).Scan(&p.ID, &created)
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *PartRepository) DeleteBySKUs(ctx context.Context, skus []string) error {
	if len(skus) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM parts WHERE sku = ANY($1)`, skus)
	return err
}

func (r *PartRepository) ReplaceApplications(ctx context.Context, partID uuid.UUID, apps []*part.VehicleApplication) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM vehicle_applications WHERE part_id = $1`, partID); err != nil {
		return err
	}
	for _, a := range apps {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.PartID = partID
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO vehicle_applications (id, part_id, make, model, year_from, year_to, engine)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			a.ID, a.PartID, a.Make, a.Model, a.YearFrom, a.YearTo, a.Engine,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *PartRepository) ReplaceCrossReferences(ctx context.Context, partID uuid.UUID, refs []*part.CrossReference) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cross_references WHERE part_id = $1`, partID); err != nil {
		return err
	}
	for _, ref := range refs {
		if ref.ID == uuid.Nil {
			ref.ID = uuid.New()
		}
		ref.PartID = partID
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO cross_references (id, part_id, competitor_brand, competitor_sku)
			 VALUES ($1, $2, $3, $4)`,
			ref.ID, ref.PartID, ref.CompetitorBrand, ref.CompetitorSKU,
		); err != nil {
			return err
		}
	}
	return nil
}

func collectParts(rows pgx.Rows) ([]*part.Part, error) {
	defer rows.Close()

	var results []*part.Part
	for rows.Next() {
		var dbRow models.Part
		if err := rows.Scan(
			&dbRow.ID,
			&dbRow.SKU,
			&dbRow.Name,
			&dbRow.Description,
			&dbRow.Category,
			&dbRow.Brand,
			&dbRow.Price,
			&dbRow.Active,
			&dbRow.CreatedAt,
			&dbRow.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, toDomainPart(&dbRow))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// loadChildren fills applications, cross references and images for
// the given parts in three queries.
func (r *PartRepository) loadChildren(ctx context.Context, parts []*part.Part) error {
	if len(parts) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]*part.Part, len(parts))
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	appRows, err := tx.Query(
		ctx,
		`SELECT id, part_id, make, model, year_from, year_to, engine
		 FROM vehicle_applications WHERE part_id = ANY($1)
		 ORDER BY make, model, year_from`,
		ids,
	)
	if err != nil {
		return err
	}
	for appRows.Next() {
		var dbRow models.VehicleApplication
		if err := appRows.Scan(&dbRow.ID, &dbRow.PartID, &dbRow.Make, &dbRow.Model, &dbRow.YearFrom, &dbRow.YearTo, &dbRow.Engine); err != nil {
			appRows.Close()
			return err
		}
		if p, ok := byID[dbRow.PartID]; ok {
			p.Applications = append(p.Applications, toDomainApplication(&dbRow))
		}
	}
	appRows.Close()
	if err := appRows.Err(); err != nil {
		return err
	}

	refRows, err := tx.Query(
		ctx,
		`SELECT id, part_id, competitor_brand, competitor_sku
		 FROM cross_references WHERE part_id = ANY($1)
		 ORDER BY competitor_brand, competitor_sku`,
		ids,
	)
	if err != nil {
		return err
	}
	for refRows.Next() {
		var dbRow models.CrossReference
		if err := refRows.Scan(&dbRow.ID, &dbRow.PartID, &dbRow.CompetitorBrand, &dbRow.CompetitorSKU); err != nil {
			refRows.Close()
			return err
		}
		if p, ok := byID[dbRow.PartID]; ok {
			p.CrossReferences = append(p.CrossReferences, toDomainCrossReference(&dbRow))
		}
	}
	refRows.Close()
	if err := refRows.Err(); err != nil {
		return err
	}

	imgRows, err := tx.Query(
		ctx,
		`SELECT id, part_id, url, alt_text, sort_order, is_primary, created_at
		 FROM part_images WHERE part_id = ANY($1)
		 ORDER BY sort_order, created_at`,
		ids,
	)
	if err != nil {
		return err
	}
	for imgRows.Next() {
		var dbRow models.PartImage
		if err := imgRows.Scan(&dbRow.ID, &dbRow.PartID, &dbRow.URL, &dbRow.AltText, &dbRow.SortOrder, &dbRow.IsPrimary, &dbRow.CreatedAt); err != nil {
			imgRows.Close()
			return err
		}
		if p, ok := byID[dbRow.PartID]; ok {
			p.Images = append(p.Images, toDomainImage(&dbRow))
		}
	}
	imgRows.Close()
	return imgRows.Err()
}

func buildPartFilters(params *part.FindParams) ([]string, []interface{}) {
	where := []string{"1 = 1"}
	args := []interface{}{}
	argPos := 1
	if params == nil {
		return where, args
	}

	if sku := strings.TrimSpace(params.SKU); sku != "" {
		where = append(where, fmt.Sprintf("UPPER(sku) = UPPER($%d)", argPos))
		args = append(args, sku)
		argPos++
	}
	if brand := strings.TrimSpace(params.Brand); brand != "" {
		where = append(where, fmt.Sprintf("brand ILIKE $%d", argPos))
		args = append(args, brand)
		argPos++
	}
	if category := strings.TrimSpace(params.Category); category != "" {
		where = append(where, fmt.Sprintf("category ILIKE $%d", argPos))
		args = append(args, category)
		argPos++
	}
	if params.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", argPos))
		args = append(args, *params.Active)
		argPos++
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		where = append(where, fmt.Sprintf("(sku ILIKE $%d OR name ILIKE $%d OR description ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+search+"%")
	}
	return where, args
}
