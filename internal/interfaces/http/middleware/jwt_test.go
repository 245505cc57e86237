package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/domain/identity"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/auth"
	"github.com/webstudio/backend/internal/infrastructure/config"
	"github.com/webstudio/backend/internal/infrastructure/logger"
	"github.com/webstudio/backend/internal/interfaces/http/dto"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "webstudio-test",
		MaxRefreshCount:        10,
	})
}

// tokenAuthenticator mirrors the identity service: signature check plus blacklist
type tokenAuthenticator struct {
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	failWith  error
}

func (a *tokenAuthenticator) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if a.failWith != nil {
		return nil, a.failWith
	}
	claims, err := a.jwt.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.WrapDomainError("TOKEN_EXPIRED", "Token has expired", err)
		}
		return nil, shared.WrapDomainError("INVALID_TOKEN", "Invalid token", err)
	}
	if revoked, _ := a.blacklist.IsRevoked(ctx, claims.ID); revoked {
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}
	return claims, nil
}

func issueToken(t *testing.T, svc *auth.JWTService, role identity.Role) (*auth.TokenPair, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:      userID,
		Email:       "editor@webstudio.cz",
		Role:        string(role),
		Permissions: role.Permissions(),
	})
	require.NoError(t, err)
	return pair, userID
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestAuthenticate_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	pair, userID := issueToken(t, svc, identity.RoleEditor)

	router := gin.New()
	router.Use(Authenticate(&tokenAuthenticator{jwt: svc, blacklist: auth.NewInMemoryTokenBlacklist()}))
	router.GET("/admin/leads", func(c *gin.Context) {
		claims := Claims(c)
		require.NotNil(t, claims)
		assert.Equal(t, userID.String(), UserID(c))
		assert.Equal(t, "editor", claims.Role)
		assert.Contains(t, Permissions(c), identity.PermLeadRead)
		assert.Equal(t, userID.String(), logger.GetUserID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	w := get(router, "/admin/leads", map[string]string{"Authorization": "Bearer " + pair.AccessToken})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_Rejects(t *testing.T) {
	svc := newTestJWTService()
	pair, _ := issueToken(t, svc, identity.RoleAdmin)
	blacklist := auth.NewInMemoryTokenBlacklist()
	authenticator := &tokenAuthenticator{jwt: svc, blacklist: blacklist}

	router := gin.New()
	router.Use(RequestID(), Authenticate(authenticator))
	router.GET("/admin/leads", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"basic scheme", "Basic dXNlcjpwYXNz", dto.ErrCodeUnauthorized},
		{"empty bearer", "Bearer ", dto.ErrCodeUnauthorized},
		{"garbage token", "Bearer not.a.jwt", dto.ErrCodeTokenInvalid},
		{"refresh token used as access", "Bearer " + pair.RefreshToken, dto.ErrCodeTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := get(router, "/admin/leads", headers)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			errInfo := decodeError(t, w)
			assert.Equal(t, tt.code, errInfo.Code)
			assert.NotEmpty(t, errInfo.RequestID)
		})
	}

	t.Run("revoked token", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, blacklist.Revoke(context.Background(), claims.ID, time.Minute))

		w := get(router, "/admin/leads", map[string]string{"Authorization": "Bearer " + pair.AccessToken})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenRevoked, decodeError(t, w).Code)
	})
}

func TestAuthenticate_InfrastructureFailure(t *testing.T) {
	router := gin.New()
	router.Use(Authenticate(&tokenAuthenticator{
		failWith: shared.WrapDomainError("INTERNAL_ERROR", "Failed to check token", errors.New("redis down")),
	}))
	router.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(router, "/admin", map[string]string{"Authorization": "Bearer x"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrCodeInternal, decodeError(t, w).Code)
}

func TestAuthenticate_PublicPaths(t *testing.T) {
	router := gin.New()
	router.Use(AuthenticateWithConfig(AuthConfig{
		Authenticator: &tokenAuthenticator{failWith: errors.New("must not be called")},
		Public:        []string{"/health", "/swagger/*"},
	}))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/swagger/index.html", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(router, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, get(router, "/swagger/index.html", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/healthz", nil).Code)
}

func TestAuthenticate_OnError(t *testing.T) {
	var called bool
	router := gin.New()
	router.Use(AuthenticateWithConfig(AuthConfig{
		Authenticator: &tokenAuthenticator{jwt: newTestJWTService()},
		OnError: func(c *gin.Context, err error) {
			called = true
			c.Redirect(http.StatusFound, "/login")
		},
	}))
	router.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(router, "/admin", nil)
	assert.True(t, called)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	svc := newTestJWTService()
	pair, userID := issueToken(t, svc, identity.RoleEditor)

	router := gin.New()
	router.Use(OptionalAuth(&tokenAuthenticator{jwt: svc, blacklist: auth.NewInMemoryTokenBlacklist()}))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	assert.Equal(t, userID.String(), get(router, "/test", map[string]string{"Authorization": "Bearer " + pair.AccessToken}).Body.String())
	assert.Empty(t, get(router, "/test", map[string]string{"Authorization": "Bearer broken"}).Body.String())
	assert.Empty(t, get(router, "/test", nil).Body.String())
}
