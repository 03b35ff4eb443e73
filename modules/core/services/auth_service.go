package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"

	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/modules/core/domain/entities/authlog"
	"github.com/partsdesk/partsdesk/modules/core/domain/entities/session"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/configuration"
	"github.com/partsdesk/partsdesk/pkg/eventbus"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrSessionExpired     = errors.New("session expired")
)

type SessionCreatedEvent struct {
	UserID string
	IP     string
}

type AuthService struct {
	users    user.Repository
	sessions session.Repository
	authLogs authlog.Repository
	bus      eventbus.EventBus
	tx       func(context.Context, func(context.Context) error) error
}

func NewAuthService(
	users user.Repository,
	sessions session.Repository,
	authLogs authlog.Repository,
	bus eventbus.EventBus,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		authLogs: authLogs,
		bus:      bus,
		tx:       composables.InTx,
	}
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (s *AuthService) logAttempt(ctx context.Context, u *user.User, email string, success bool) {
	ip, _ := composables.UseIP(ctx)
	ua, _ := composables.UseUserAgent(ctx)
	entry := &authlog.AuthenticationLog{
		Email:     email,
		IP:        ip,
		UserAgent: ua,
		Success:   success,
	}
	if u != nil {
		entry.UserID = &u.ID
	}
	// A failed audit write must not mask the authentication result.
	if err := s.authLogs.Create(ctx, entry); err != nil {
		composables.UseLogger(ctx).WithError(err).Error("failed to record authentication attempt")
	}
}

// Authenticate verifies credentials and opens a new session. The
// session insert and the success audit row share one transaction.
// Failed attempts are recorded on the pool after the transaction has
// rolled back, otherwise the rollback would discard the audit row too.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*user.User, *session.Session, error) {
	conf := configuration.Use()

	var authedUser *user.User
	var failedUser *user.User
	var sess *session.Session
	err := s.tx(ctx, func(txCtx context.Context) error {
		u, err := s.users.GetByEmail(txCtx, email)
		if err != nil {
			return ErrInvalidCredentials
		}
		if !u.CheckPassword(password) {
			failedUser = u
			return ErrInvalidCredentials
		}
		if !u.Active {
			failedUser = u
			return ErrUserInactive
		}

		token, err := newSessionToken()
		if err != nil {
			return errors.Wrap(err, "failed to generate session token")
		}
		ip, _ := composables.UseIP(txCtx)
		ua, _ := composables.UseUserAgent(txCtx)
		newSess := &session.Session{
			Token:     token,
			UserID:    u.ID,
			IP:        ip,
			UserAgent: ua,
			ExpiresAt: time.Now().Add(conf.SessionDuration),
			CreatedAt: time.Now(),
		}
		if err := s.sessions.Create(txCtx, newSess); err != nil {
			return errors.Wrap(err, "failed to create session")
		}
		s.logAttempt(txCtx, u, email, true)

		authedUser = u
		sess = newSess
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrUserInactive) {
			s.logAttempt(ctx, failedUser, email, false)
		}
		return nil, nil, err
	}

	s.bus.Publish(&SessionCreatedEvent{UserID: authedUser.ID.String(), IP: sess.IP})
	return authedUser, sess, nil
}

// Authorize resolves a session token to its user. Expired sessions are
// removed on sight.
func (s *AuthService) Authorize(ctx context.Context, token string) (*user.User, *session.Session, error) {
	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if sess.IsExpired() {
		_ = s.sessions.Delete(ctx, token)
		return nil, nil, ErrSessionExpired
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

// LoginHistory lists recorded authentication attempts for the admin
// activity view.
func (s *AuthService) LoginHistory(ctx context.Context, params *authlog.FindParams) ([]*authlog.AuthenticationLog, int64, error) {
	logs, err := s.authLogs.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.authLogs.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// LogoutAll terminates every session of the given user, used when a
// profile is deactivated.
func (s *AuthService) LogoutAll(ctx context.Context, u *user.User) error {
	return s.sessions.DeleteByUserID(ctx, u.ID)
}
