package authlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuthenticationLog records a login attempt, successful or not.
type AuthenticationLog struct {
	ID        uint
	UserID    *uuid.UUID
	Email     string
	IP        string
	UserAgent string
	Success   bool
	CreatedAt time.Time
}

type FindParams struct {
	Email   string
	Success *bool
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

type Repository interface {
	List(ctx context.Context, params *FindParams) ([]*AuthenticationLog, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, log *AuthenticationLog) error
}
