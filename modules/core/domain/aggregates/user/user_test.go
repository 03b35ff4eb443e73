package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleDataManager.IsValid())
	assert.False(t, Role("superuser").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestPasswordHashing(t *testing.T) {
	u := New("jane@example.com", "Jane", "Doe", RoleAdmin)
	require.NoError(t, u.SetPassword("correct horse battery staple"))

	assert.NotEmpty(t, u.PasswordHash)
	assert.NotContains(t, u.PasswordHash, "correct horse")
	assert.True(t, u.CheckPassword("correct horse battery staple"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestNewUser(t *testing.T) {
	u := New("Jane@Example.com", "Jane", "Doe", RoleDataManager)

	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "Jane Doe", u.FullName())
	assert.True(t, u.Active)
	assert.False(t, u.IsAdmin())
}
