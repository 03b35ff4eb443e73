package composables

import (
	"context"
	"errors"

	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/modules/core/domain/entities/session"
	"github.com/partsdesk/partsdesk/pkg/constants"
)

var (
	ErrNoUser    = errors.New("no user found in context")
	ErrNoSession = errors.New("no session found in context")
)

func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, constants.UserKey, u)
}

func UseUser(ctx context.Context) (*user.User, error) {
	u, ok := ctx.Value(constants.UserKey).(*user.User)
	if !ok {
		return nil, ErrNoUser
	}
	return u, nil
}

func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, constants.SessionKey, s)
}

func UseSession(ctx context.Context) (*session.Session, error) {
	s, ok := ctx.Value(constants.SessionKey).(*session.Session)
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}
