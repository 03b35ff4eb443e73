package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/aggregates/part"
	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/persistence/models"
	"github.com/partsdesk/partsdesk/pkg/composables"
)

var ErrImageNotFound = errors.New("part image not found")

const imageColumns = "id, part_id, url, alt_text, sort_order, is_primary, created_at"

type ImageRepository struct{}

func NewImageRepository() part.ImageRepository {
	return &ImageRepository{}
}

func scanImage(row pgx.Row) (*part.Image, error) {
	var dbRow models.PartImage
	if err := row.Scan(
		&dbRow.ID,
		&dbRow.PartID,
		&dbRow.URL,
		&dbRow.AltText,
		&dbRow.SortOrder,
		&dbRow.IsPrimary,
		&dbRow.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return toDomainImage(&dbRow), nil
}

func (r *ImageRepository) GetByID(ctx context.Context, id uuid.UUID) (*part.Image, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanImage(tx.QueryRow(
		ctx,
		`SELECT `+imageColumns+` FROM part_images WHERE id = $1`,
		id,
	))
}

func (r *ImageRepository) ListByPart(ctx context.Context, partID uuid.UUID) ([]*part.Image, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(
		ctx,
		`SELECT `+imageColumns+` FROM part_images WHERE part_id = $1 ORDER BY sort_order, created_at`,
		partID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*part.Image
	for rows.Next() {
		var dbRow models.PartImage
		if err := rows.Scan(
			&dbRow.ID,
			&dbRow.PartID,
			&dbRow.URL,
			&dbRow.AltText,
			&dbRow.SortOrder,
			&dbRow.IsPrimary,
			&dbRow.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, toDomainImage(&dbRow))
	}
	return results, rows.Err()
}

func (r *ImageRepository) Create(ctx context.Context, img *part.Image) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now()
	}
	_, err = tx.Exec(
		ctx,
		`INSERT INTO part_images (id, part_id, url, alt_text, sort_order, is_primary, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		img.ID, img.PartID, img.URL, img.AltText, img.SortOrder, img.IsPrimary, img.CreatedAt,
	)
	return err
}

func (r *ImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM part_images WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}

func (r *ImageRepository) UnsetPrimary(ctx context.Context, partID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `UPDATE part_images SET is_primary = FALSE WHERE part_id = $1 AND is_primary`, partID)
	return err
}

func (r *ImageRepository) SetPrimary(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE part_images SET is_primary = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}

func (r *ImageRepository) UpdateSortOrder(ctx context.Context, id uuid.UUID, sortOrder int) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE part_images SET sort_order = $2 WHERE id = $1`, id, sortOrder)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}
