package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/modules/core/domain/entities/session"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/eventbus"
)

type UserCreatedEvent struct {
	UserID string
}

type UserUpdatedEvent struct {
	UserID string
}

type UserService struct {
	users    user.Repository
	sessions session.Repository
	bus      eventbus.EventBus
}

func NewUserService(users user.Repository, sessions session.Repository, bus eventbus.EventBus) *UserService {
	return &UserService{users: users, sessions: sessions, bus: bus}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.users.GetByEmail(ctx, email)
}

func (s *UserService) List(ctx context.Context, params *user.FindParams) ([]*user.User, int64, error) {
	if params == nil {
		params = &user.FindParams{}
	}
	users, err := s.users.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.users.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

func (s *UserService) Create(ctx context.Context, u *user.User, password string) error {
	if !u.Role.IsValid() {
		return errors.Errorf("invalid role %q", u.Role)
	}
	if err := u.SetPassword(password); err != nil {
		return errors.Wrap(err, "failed to hash password")
	}
	if err := s.users.Create(ctx, u); err != nil {
		return err
	}
	s.bus.Publish(&UserCreatedEvent{UserID: u.ID.String()})
	return nil
}

func (s *UserService) Update(ctx context.Context, u *user.User) error {
	if !u.Role.IsValid() {
		return errors.Errorf("invalid role %q", u.Role)
	}
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	s.bus.Publish(&UserUpdatedEvent{UserID: u.ID.String()})
	return nil
}

// SetActive flips the active flag. Deactivating also revokes every open
// session so the profile loses access immediately.
func (s *UserService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*user.User, error) {
	var updated *user.User
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		u, err := s.users.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		u.Active = active
		if err := s.users.Update(txCtx, u); err != nil {
			return err
		}
		if !active {
			if err := s.sessions.DeleteByUserID(txCtx, u.ID); err != nil {
				return err
			}
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bus.Publish(&UserUpdatedEvent{UserID: updated.ID.String()})
	return updated, nil
}

func (s *UserService) ChangeRole(ctx context.Context, id uuid.UUID, role user.Role) (*user.User, error) {
	if !role.IsValid() {
		return nil, errors.Errorf("invalid role %q", role)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Role = role
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.bus.Publish(&UserUpdatedEvent{UserID: u.ID.String()})
	return u, nil
}
