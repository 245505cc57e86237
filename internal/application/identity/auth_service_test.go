package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/domain/identity"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/auth"
	"github.com/webstudio/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

const testPassword = "secret123"

func newTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser("editor@example.com", "Jana Nováková", testPassword, role)
	require.NoError(t, err)
	return user
}

func newTestAuthService(repo identity.UserRepository) (*AuthService, *auth.InMemoryTokenBlacklist) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "webstudio",
		MaxRefreshCount:        3,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	return NewAuthService(repo, jwtService, blacklist, zap.NewNop()), blacklist
}

func TestAuthService_Login(t *testing.T) {
	t.Run("success records login", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		user := newTestUser(t, identity.RoleEditor)

		repo.On("FindByEmail", mock.Anything, "editor@example.com").Return(user, nil)
		repo.On("Update", mock.Anything, user).Return(nil)

		result, err := svc.Login(context.Background(), LoginInput{Email: "editor@example.com", Password: testPassword})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, "editor", result.User.Role)
		assert.Contains(t, result.User.Permissions, identity.PermBlogWrite)
		assert.NotNil(t, user.LastLoginAt)
		repo.AssertExpectations(t)
	})

	t.Run("unknown email and wrong password give the same error", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		user := newTestUser(t, identity.RoleEditor)

		repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, shared.ErrNotFound)
		repo.On("FindByEmail", mock.Anything, "editor@example.com").Return(user, nil)

		_, errUnknown := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: testPassword})
		_, errWrong := svc.Login(context.Background(), LoginInput{Email: "editor@example.com", Password: "wrong-pass1"})

		assert.ErrorIs(t, errUnknown, shared.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, shared.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("deactivated user", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		user := newTestUser(t, identity.RoleEditor)
		require.NoError(t, user.Deactivate())

		repo.On("FindByEmail", mock.Anything, "editor@example.com").Return(user, nil)

		_, err := svc.Login(context.Background(), LoginInput{Email: "editor@example.com", Password: testPassword})
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErr.Code)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)

		repo.On("FindByEmail", mock.Anything, "editor@example.com").Return(nil, errors.New("connection refused"))

		_, err := svc.Login(context.Background(), LoginInput{Email: "editor@example.com", Password: testPassword})
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)
	})
}

func loginForTest(t *testing.T, svc *AuthService, repo *MockUserRepository, user *identity.User) *LoginResult {
	t.Helper()
	repo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil).Once()
	repo.On("Update", mock.Anything, user).Return(nil).Once()
	result, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: testPassword})
	require.NoError(t, err)
	return result
}

func TestAuthService_Refresh(t *testing.T) {
	t.Run("rotates and revokes the old token", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		user := newTestUser(t, identity.RoleEditor)
		login := loginForTest(t, svc, repo, user)

		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		result, err := svc.Refresh(context.Background(), login.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, login.RefreshToken, result.RefreshToken)

		_, err = svc.Refresh(context.Background(), login.RefreshToken)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "TOKEN_REVOKED", domainErr.Code)
	})

	t.Run("concurrent reuse yields one pair", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		user := newTestUser(t, identity.RoleEditor)
		login := loginForTest(t, svc, repo, user)
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		const callers = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			issued  int
			revoked int
		)
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Refresh(context.Background(), login.RefreshToken)
				mu.Lock()
				defer mu.Unlock()
				var domainErr *shared.DomainError
				switch {
				case err == nil:
					issued++
				case errors.As(err, &domainErr) && domainErr.Code == "TOKEN_REVOKED":
					revoked++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, issued)
		assert.Equal(t, callers-1, revoked)
	})

	t.Run("uses the current role", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		user := newTestUser(t, identity.RoleEditor)
		login := loginForTest(t, svc, repo, user)

		require.NoError(t, user.Update(user.Name, identity.RoleAdmin))
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		result, err := svc.Refresh(context.Background(), login.RefreshToken)
		require.NoError(t, err)

		claims, err := svc.Authenticate(context.Background(), result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Role)
		assert.True(t, claims.HasPermission(identity.PermUserWrite))
	})

	t.Run("deactivated user", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		user := newTestUser(t, identity.RoleEditor)
		login := loginForTest(t, svc, repo, user)

		require.NoError(t, user.Deactivate())
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		_, err := svc.Refresh(context.Background(), login.RefreshToken)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErr.Code)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		user := newTestUser(t, identity.RoleEditor)
		login := loginForTest(t, svc, repo, user)

		_, err := svc.Refresh(context.Background(), login.AccessToken)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_TOKEN", domainErr.Code)
	})

	t.Run("refresh limit", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		user := newTestUser(t, identity.RoleEditor)
		login := loginForTest(t, svc, repo, user)
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		token := login.RefreshToken
		for range 3 {
			result, err := svc.Refresh(context.Background(), token)
			require.NoError(t, err)
			token = result.RefreshToken
		}

		_, err := svc.Refresh(context.Background(), token)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "REFRESH_LIMIT", domainErr.Code)
	})
}

func TestAuthService_Logout(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _ := newTestAuthService(repo)
	user := newTestUser(t, identity.RoleAdmin)
	login := loginForTest(t, svc, repo, user)

	_, err := svc.Authenticate(context.Background(), login.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.AccessToken))

	_, err = svc.Authenticate(context.Background(), login.AccessToken)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "TOKEN_REVOKED", domainErr.Code)

	err = svc.Logout(context.Background(), "not-a-token")
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_TOKEN", domainErr.Code)
}

func TestAuthService_RevokeSessions(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _ := newTestAuthService(repo)
	user := newTestUser(t, identity.RoleEditor)
	login := loginForTest(t, svc, repo, user)

	require.NoError(t, svc.RevokeSessions(context.Background(), user.ID))

	_, err := svc.Authenticate(context.Background(), login.AccessToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrTokenBlacklisted)
}

func TestAuthService_Me(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _ := newTestAuthService(repo)
	user := newTestUser(t, identity.RoleEditor)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	missing := uuid.New()
	repo.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	me, err := svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "editor@example.com", me.Email)

	_, err = svc.Me(context.Background(), missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
