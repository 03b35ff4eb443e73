package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/partsdesk/partsdesk/modules/catalog/domain/entities/importrecord"
	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/persistence/models"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/repo"
)

var ErrImportNotFound = errors.New("import record not found")

const importColumns = "id, filename, file_size, checksum, row_count, created_count, updated_count, imported_by, snapshot, created_at"

type ImportRepository struct{}

func NewImportRepository() importrecord.Repository {
	return &ImportRepository{}
}

func scanImportRecord(row pgx.Row) (*importrecord.ImportRecord, error) {
	var dbRow models.ImportHistory
	if err := row.Scan(
		&dbRow.ID,
		&dbRow.Filename,
		&dbRow.FileSize,
		&dbRow.Checksum,
		&dbRow.RowCount,
		&dbRow.CreatedCount,
		&dbRow.UpdatedCount,
		&dbRow.ImportedBy,
		&dbRow.Snapshot,
		&dbRow.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImportNotFound
		}
		return nil, err
	}
	return toDomainImportRecord(&dbRow)
}

func (r *ImportRepository) GetByID(ctx context.Context, id uuid.UUID) (*importrecord.ImportRecord, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanImportRecord(tx.QueryRow(
		ctx,
		`SELECT `+importColumns+` FROM import_history WHERE id = $1`,
		id,
	))
}

func (r *ImportRepository) List(ctx context.Context, params *importrecord.FindParams) ([]*importrecord.ImportRecord, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + importColumns + ` FROM import_history ORDER BY created_at DESC`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectImportRecords(rows)
}

func (r *ImportRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM import_history`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ImportRepository) Create(ctx context.Context, rec *importrecord.ImportRecord) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	dbRow, err := toDBImportRecord(rec)
	if err != nil {
		return err
	}
	if dbRow.CreatedAt.IsZero() {
		dbRow.CreatedAt = time.Now()
	}
	return tx.QueryRow(
		ctx,
		`INSERT INTO import_history (id, filename, file_size, checksum, row_count, created_count, updated_count, imported_by, snapshot, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		dbRow.ID,
		dbRow.Filename,
		dbRow.FileSize,
		dbRow.Checksum,
		dbRow.RowCount,
		dbRow.CreatedCount,
		dbRow.UpdatedCount,
		dbRow.ImportedBy,
		dbRow.Snapshot,
		dbRow.CreatedAt,
	).Scan(&rec.CreatedAt)
}

func (r *ImportRepository) ListRollbackable(ctx context.Context, limit int) ([]*importrecord.ImportRecord, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(
		ctx,
		`SELECT `+importColumns+` FROM import_history
		 WHERE snapshot IS NOT NULL
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	return collectImportRecords(rows)
}

func (r *ImportRepository) ClearSnapshot(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE import_history SET snapshot = NULL WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrImportNotFound
	}
	return nil
}

func collectImportRecords(rows pgx.Rows) ([]*importrecord.ImportRecord, error) {
	defer rows.Close()

	var results []*importrecord.ImportRecord
	for rows.Next() {
		var dbRow models.ImportHistory
		if err := rows.Scan(
			&dbRow.ID,
			&dbRow.Filename,
			&dbRow.FileSize,
			&dbRow.Checksum,
			&dbRow.RowCount,
			&dbRow.CreatedCount,
			&dbRow.UpdatedCount,
			&dbRow.ImportedBy,
			&dbRow.Snapshot,
			&dbRow.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec, err := toDomainImportRecord(&dbRow)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
