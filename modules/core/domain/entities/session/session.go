package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Token     string
	UserID    uuid.UUID
	IP        string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

type Repository interface {
	GetByToken(ctx context.Context, token string) (*Session, error)
	Create(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}
