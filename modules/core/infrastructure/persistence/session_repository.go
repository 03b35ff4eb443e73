package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/partsdesk/partsdesk/modules/core/domain/entities/session"
	"github.com/partsdesk/partsdesk/modules/core/infrastructure/persistence/models"
	"github.com/partsdesk/partsdesk/pkg/composables"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository struct{}

func NewSessionRepository() session.Repository {
	return &SessionRepository{}
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var dbRow models.Session
	if err := tx.QueryRow(
		ctx,
		`SELECT token, user_id, ip, user_agent, expires_at, created_at FROM sessions WHERE token = $1`,
		token,
	).Scan(
		&dbRow.Token,
		&dbRow.UserID,
		&dbRow.IP,
		&dbRow.UserAgent,
		&dbRow.ExpiresAt,
		&dbRow.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return toDomainSession(&dbRow), nil
}

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	_, err = tx.Exec(
		ctx,
		`INSERT INTO sessions (token, user_id, ip, user_agent, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.Token,
		s.UserID,
		s.IP,
		s.UserAgent,
		s.ExpiresAt,
		s.CreatedAt,
	)
	return err
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	return err
}
