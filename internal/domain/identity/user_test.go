package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/domain/shared"
)

func TestNewUser(t *testing.T) {
	t.Run("creates active user with hashed password", func(t *testing.T) {
		user, err := NewUser("  Jana.Novak@Example.CZ ", "Jana Nováková", "Heslo2024", RoleEditor)

		require.NoError(t, err)
		assert.Equal(t, "jana.novak@example.cz", user.Email)
		assert.Equal(t, "Jana Nováková", user.Name)
		assert.Equal(t, RoleEditor, user.Role)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "Heslo2024", user.PasswordHash)
		assert.True(t, user.VerifyPassword("Heslo2024"))
		assert.Equal(t, 1, user.Version)

		events := user.PendingEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*UserCreatedEvent)
		assert.True(t, ok)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("not-an-email", "Jana", "Heslo2024", RoleAdmin)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid email")
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("jana@example.cz", "Jana", "Heslo2024", Role("owner"))
		require.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewUser("jana@example.cz", "   ", "Heslo2024", RoleAdmin)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Name cannot be empty")
	})

	passwords := map[string]string{
		"too short": "abc1",
		"no digit":  "abcdefghij",
		"no letter": "1234567890",
		"empty":     "",
	}
	for name, pw := range passwords {
		t.Run("rejects password "+name, func(t *testing.T) {
			_, err := NewUser("jana@example.cz", "Jana", pw, RoleAdmin)
			require.Error(t, err)
			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, "INVALID_PASSWORD", de.Code)
		})
	}
}

func TestUser_ChangePassword(t *testing.T) {
	user, err := NewUser("petr@example.cz", "Petr", "Start1234", RoleAdmin)
	require.NoError(t, err)
	user.ClearEvents()

	err = user.ChangePassword("wrong1234", "Nove12345")
	assert.Error(t, err)

	require.NoError(t, user.ChangePassword("Start1234", "Nove12345"))
	assert.True(t, user.VerifyPassword("Nove12345"))
	assert.False(t, user.VerifyPassword("Start1234"))
	assert.Equal(t, 2, user.Version)
	assert.Len(t, user.PendingEvents(), 1)
}

func TestUser_ActivateDeactivate(t *testing.T) {
	user, err := NewUser("petr@example.cz", "Petr", "Start1234", RoleAdmin)
	require.NoError(t, err)

	assert.Error(t, user.Activate())
	require.NoError(t, user.Deactivate())
	assert.False(t, user.IsActive)
	assert.Error(t, user.Deactivate())
	require.NoError(t, user.Activate())
	assert.True(t, user.IsActive)
}

func TestUser_GuardSelfAction(t *testing.T) {
	user, err := NewUser("petr@example.cz", "Petr", "Start1234", RoleAdmin)
	require.NoError(t, err)

	assert.Error(t, user.GuardSelfAction(user.ID))
	assert.NoError(t, user.GuardSelfAction(uuid.New()))
}

func TestUser_RecordLogin(t *testing.T) {
	user, err := NewUser("petr@example.cz", "Petr", "Start1234", RoleAdmin)
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	user.RecordLogin(at)
	require.NotNil(t, user.LastLoginAt)
	assert.Equal(t, at, *user.LastLoginAt)
}

func TestRole_Permissions(t *testing.T) {
	assert.ElementsMatch(t, AllPermissions, RoleAdmin.Permissions())

	editor := RoleEditor.Permissions()
	assert.Contains(t, editor, PermBlogWrite)
	assert.Contains(t, editor, PermLeadRead)
	assert.NotContains(t, editor, PermLeadWrite)
	assert.NotContains(t, editor, PermInvoiceRead)
	assert.NotContains(t, editor, PermUserWrite)

	assert.Empty(t, Role("guest").Permissions())
	assert.Equal(t, RoleAdmin, ParseRole(" ADMIN "))
}
