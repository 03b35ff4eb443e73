package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/modules/core/infrastructure/persistence/models"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/repo"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = "id, email, first_name, last_name, password_hash, role, active, created_at, updated_at"

type UserRepository struct{}

func NewUserRepository() user.Repository {
	return &UserRepository{}
}

func scanUser(row pgx.Row) (*user.User, error) {
	var dbRow models.User
	if err := row.Scan(
		&dbRow.ID,
		&dbRow.Email,
		&dbRow.FirstName,
		&dbRow.LastName,
		&dbRow.PasswordHash,
		&dbRow.Role,
		&dbRow.Active,
		&dbRow.CreatedAt,
		&dbRow.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toDomainUser(&dbRow), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanUser(tx.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM user_profiles WHERE id = $1`,
		id,
	))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanUser(tx.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM user_profiles WHERE LOWER(email) = LOWER($1)`,
		email,
	))
}

func (r *UserRepository) List(ctx context.Context, params *user.FindParams) ([]*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildUserFilters(params)
	query := `SELECT ` + userColumns + ` FROM user_profiles WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at DESC`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*user.User
	for rows.Next() {
		var dbRow models.User
		if err := rows.Scan(
			&dbRow.ID,
			&dbRow.Email,
			&dbRow.FirstName,
			&dbRow.LastName,
			&dbRow.PasswordHash,
			&dbRow.Role,
			&dbRow.Active,
			&dbRow.CreatedAt,
			&dbRow.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, toDomainUser(&dbRow))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *UserRepository) Count(ctx context.Context, params *user.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildUserFilters(params)

	var count int64
	if err := tx.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM user_profiles WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	dbRow := toDBUser(u)
	if dbRow.CreatedAt.IsZero() {
		dbRow.CreatedAt = time.Now()
	}
	dbRow.UpdatedAt = dbRow.CreatedAt

	return tx.QueryRow(
		ctx,
		`INSERT INTO user_profiles (id, email, first_name, last_name, password_hash, role, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		dbRow.ID,
		dbRow.Email,
		dbRow.FirstName,
		dbRow.LastName,
		dbRow.PasswordHash,
		dbRow.Role,
		dbRow.Active,
		dbRow.CreatedAt,
		dbRow.UpdatedAt,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	dbRow := toDBUser(u)
	tag, err := tx.Exec(
		ctx,
		`UPDATE user_profiles
		 SET email = $2, first_name = $3, last_name = $4, password_hash = $5, role = $6, active = $7, updated_at = now()
		 WHERE id = $1`,
		dbRow.ID,
		dbRow.Email,
		dbRow.FirstName,
		dbRow.LastName,
		dbRow.PasswordHash,
		dbRow.Role,
		dbRow.Active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM user_profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func buildUserFilters(params *user.FindParams) ([]string, []interface{}) {
	where := []string{"1 = 1"}
	args := []interface{}{}
	argPos := 1
	if params == nil {
		return where, args
	}

	if email := strings.TrimSpace(params.Email); email != "" {
		where = append(where, fmt.Sprintf("LOWER(email) = LOWER($%d)", argPos))
		args = append(args, email)
		argPos++
	}
	if params.Role != "" {
		where = append(where, fmt.Sprintf("role = $%d", argPos))
		args = append(args, string(params.Role))
		argPos++
	}
	if params.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", argPos))
		args = append(args, *params.Active)
		argPos++
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		where = append(where, fmt.Sprintf("(email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+search+"%")
	}
	return where, args
}
