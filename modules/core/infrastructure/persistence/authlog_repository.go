package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/partsdesk/partsdesk/modules/core/domain/entities/authlog"
	"github.com/partsdesk/partsdesk/modules/core/infrastructure/persistence/models"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/repo"
)

type AuthenticationLogRepository struct{}

func NewAuthenticationLogRepository() authlog.Repository {
	return &AuthenticationLogRepository{}
}

func (r *AuthenticationLogRepository) List(ctx context.Context, params *authlog.FindParams) ([]*authlog.AuthenticationLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildAuthLogFilters(params)
	query := `
		SELECT id, user_id, email, ip, user_agent, success, created_at
		FROM authentication_logs
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC
	`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*authlog.AuthenticationLog
	for rows.Next() {
		var row models.AuthenticationLog
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.Email,
			&row.IP,
			&row.UserAgent,
			&row.Success,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, toDomainAuthLog(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *AuthenticationLogRepository) Count(ctx context.Context, params *authlog.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildAuthLogFilters(params)

	var count int64
	if err := tx.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM authentication_logs WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AuthenticationLogRepository) Create(ctx context.Context, log *authlog.AuthenticationLog) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	return tx.QueryRow(
		ctx,
		`INSERT INTO authentication_logs (user_id, email, ip, user_agent, success, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		log.UserID,
		log.Email,
		log.IP,
		log.UserAgent,
		log.Success,
		log.CreatedAt,
	).Scan(&log.ID, &log.CreatedAt)
}

func buildAuthLogFilters(params *authlog.FindParams) ([]string, []interface{}) {
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
	if params.Success != nil {
		where = append(where, fmt.Sprintf("success = $%d", argPos))
		args = append(args, *params.Success)
		argPos++
	}
	if params.From != nil && !params.From.IsZero() {
		where = append(where, fmt.Sprintf("created_at >= $%d", argPos))
		args = append(args, *params.From)
		argPos++
	}
	if params.To != nil && !params.To.IsZero() {
		where = append(where, fmt.Sprintf("created_at <= $%d", argPos))
		args = append(args, *params.To)
	}
	return where, args
}
