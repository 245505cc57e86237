package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/domain/identity"
	"github.com/webstudio/backend/internal/domain/shared"
)

func newTestUser(t *testing.T, email, name string, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser(email, name, "s3cret-password", role)
	require.NoError(t, err)
	return u
}

func TestGormUserRepository_CRUD(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()

	user := newTestUser(t, "Admin@Example.com", "Admin", identity.RoleAdmin)
	require.NoError(t, repo.Create(ctx, user))

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, found.Email)
		assert.Equal(t, identity.RoleAdmin, found.Role)
		assert.True(t, found.IsActive)
		assert.Equal(t, user.PasswordHash, found.PasswordHash)
	})

	t.Run("find by email ignores case", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "  ADMIN@example.COM ")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("exists by email", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("update", func(t *testing.T) {
		user.Name = "Renamed"
		require.NoError(t, repo.Update(ctx, user))

		found, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", found.Name)
	})

	t.Run("update unknown user", func(t *testing.T) {
		ghost := newTestUser(t, "ghost@example.com", "Ghost", identity.RoleEditor)
		assert.ErrorIs(t, repo.Update(ctx, ghost), shared.ErrNotFound)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByEmail(ctx, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, user.ID))
		assert.ErrorIs(t, repo.Delete(ctx, user.ID), shared.ErrNotFound)
	})
}

func TestGormUserRepository_FindAll(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser(t, "anna@example.com", "Anna Admin", identity.RoleAdmin)))
	require.NoError(t, repo.Create(ctx, newTestUser(t, "bert@example.com", "Bert Editor", identity.RoleEditor)))
	require.NoError(t, repo.Create(ctx, newTestUser(t, "cecil@example.com", "Cecil Editor", identity.RoleEditor)))

	t.Run("all users", func(t *testing.T) {
		users, total, err := repo.FindAll(ctx, identity.UserFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, users, 3)
	})

	t.Run("by role with paging", func(t *testing.T) {
		role := identity.RoleEditor
		users, total, err := repo.FindAll(ctx, identity.UserFilter{
			Role: &role, Page: 1, PageSize: 1, SortBy: "email", SortOrder: "asc",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, users, 1)
		assert.Equal(t, "bert@example.com", users[0].Email)
	})

	t.Run("keyword search", func(t *testing.T) {
		users, total, err := repo.FindAll(ctx, identity.UserFilter{Keyword: "cecil"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Cecil Editor", users[0].Name)
	})

	t.Run("count", func(t *testing.T) {
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
