package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/modules/core/domain/entities/authlog"
	"github.com/partsdesk/partsdesk/modules/core/domain/entities/session"
	"github.com/partsdesk/partsdesk/modules/core/infrastructure/persistence"
	"github.com/partsdesk/partsdesk/pkg/eventbus"
)

type mockUserRepo struct {
	users map[string]*user.User
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, persistence.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, persistence.ErrUserNotFound
}

func (m *mockUserRepo) List(_ context.Context, _ *user.FindParams) ([]*user.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Count(_ context.Context, _ *user.FindParams) (int64, error) {
	return 0, nil
}

func (m *mockUserRepo) Create(_ context.Context, u *user.User) error {
	m.users[u.Email] = u
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, u *user.User) error {
	m.users[u.Email] = u
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, _ uuid.UUID) error {
	return nil
}

type mockSessionRepo struct {
	sessions []*session.Session
}

func (m *mockSessionRepo) GetByToken(_ context.Context, token string) (*session.Session, error) {
	for _, s := range m.sessions {
		if s.Token == token {
			return s, nil
		}
	}
	return nil, persistence.ErrSessionNotFound
}

func (m *mockSessionRepo) Create(_ context.Context, s *session.Session) error {
	m.sessions = append(m.sessions, s)
	return nil
}

func (m *mockSessionRepo) Delete(_ context.Context, token string) error {
	for i, s := range m.sessions {
		if s.Token == token {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockSessionRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	m.sessions = kept
	return nil
}

func (m *mockSessionRepo) DeleteExpired(_ context.Context) error {
	return nil
}

type mockAuthLogRepo struct {
	entries []*authlog.AuthenticationLog
}

func (m *mockAuthLogRepo) List(_ context.Context, _ *authlog.FindParams) ([]*authlog.AuthenticationLog, error) {
	return m.entries, nil
}

func (m *mockAuthLogRepo) Count(_ context.Context, _ *authlog.FindParams) (int64, error) {
	return int64(len(m.entries)), nil
}

func (m *mockAuthLogRepo) Create(_ context.Context, entry *authlog.AuthenticationLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

type authFixture struct {
	svc      *AuthService
	users    *mockUserRepo
	sessions *mockSessionRepo
	authLogs *mockAuthLogRepo
}

// newAuthFixture wires the service with a runner that behaves like a
// real transaction: writes made inside a failing closure are
// discarded.
func newAuthFixture(existing ...*user.User) *authFixture {
	f := &authFixture{
		users:    &mockUserRepo{users: map[string]*user.User{}},
		sessions: &mockSessionRepo{},
		authLogs: &mockAuthLogRepo{},
	}
	for _, u := range existing {
		f.users.users[u.Email] = u
	}
	f.svc = NewAuthService(f.users, f.sessions, f.authLogs, eventbus.NewEventPublisher(logrus.New()))
	f.svc.tx = func(ctx context.Context, fn func(context.Context) error) error {
		sessionsBefore := len(f.sessions.sessions)
		logsBefore := len(f.authLogs.entries)
		if err := fn(ctx); err != nil {
			f.sessions.sessions = f.sessions.sessions[:sessionsBefore]
			f.authLogs.entries = f.authLogs.entries[:logsBefore]
			return err
		}
		return nil
	}
	return f
}

func activeUser(t *testing.T, email, password string) *user.User {
	t.Helper()
	u := user.New(email, "Pat", "Smith", user.RoleDataManager)
	require.NoError(t, u.SetPassword(password))
	return u
}

func TestAuthenticate_Success(t *testing.T) {
	u := activeUser(t, "pat@example.com", "hunter22")
	f := newAuthFixture(u)

	authed, sess, err := f.svc.Authenticate(context.Background(), "pat@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, u.ID, authed.ID)
	require.NotNil(t, sess)
	assert.NotEmpty(t, sess.Token)

	require.Len(t, f.sessions.sessions, 1)
	require.Len(t, f.authLogs.entries, 1)
	assert.True(t, f.authLogs.entries[0].Success)
	require.NotNil(t, f.authLogs.entries[0].UserID)
	assert.Equal(t, u.ID, *f.authLogs.entries[0].UserID)
}

func TestAuthenticate_WrongPasswordIsLogged(t *testing.T) {
	u := activeUser(t, "pat@example.com", "hunter22")
	f := newAuthFixture(u)

	_, _, err := f.svc.Authenticate(context.Background(), "pat@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Empty(t, f.sessions.sessions)
	// The failed attempt must survive the rolled-back transaction.
	require.Len(t, f.authLogs.entries, 1)
	assert.False(t, f.authLogs.entries[0].Success)
	assert.Equal(t, "pat@example.com", f.authLogs.entries[0].Email)
	require.NotNil(t, f.authLogs.entries[0].UserID)
	assert.Equal(t, u.ID, *f.authLogs.entries[0].UserID)
}

func TestAuthenticate_UnknownEmailIsLogged(t *testing.T) {
	f := newAuthFixture()

	_, _, err := f.svc.Authenticate(context.Background(), "nobody@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, f.authLogs.entries, 1)
	assert.False(t, f.authLogs.entries[0].Success)
	assert.Equal(t, "nobody@example.com", f.authLogs.entries[0].Email)
	assert.Nil(t, f.authLogs.entries[0].UserID)
}

func TestAuthenticate_InactiveUserIsLogged(t *testing.T) {
	u := activeUser(t, "pat@example.com", "hunter22")
	u.Active = false
	f := newAuthFixture(u)

	_, _, err := f.svc.Authenticate(context.Background(), "pat@example.com", "hunter22")
	require.ErrorIs(t, err, ErrUserInactive)

	assert.Empty(t, f.sessions.sessions)
	require.Len(t, f.authLogs.entries, 1)
	assert.False(t, f.authLogs.entries[0].Success)
}
