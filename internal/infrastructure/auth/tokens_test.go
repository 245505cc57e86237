package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/infrastructure/config"
)

func newService(secret, refreshSecret string) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 secret,
		RefreshSecret:          refreshSecret,
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "webstudio",
		MaxRefreshCount:        2,
	})
}

func editor() GenerateTokenInput {
	return GenerateTokenInput{
		UserID:      uuid.New(),
		Email:       "redakce@example.cz",
		Role:        "editor",
		Permissions: []string{"lead:read", "blog:write"},
	}
}

func TestNewJWTService_SharedSecret(t *testing.T) {
	s := newService("only-one-secret", "")
	assert.Equal(t, s.access.secret, s.refresh.secret)
	assert.Equal(t, 15*time.Minute, s.AccessTokenExpiration())
	assert.Equal(t, 7*24*time.Hour, s.RefreshTokenExpiration())
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	s := newService("access-secret-of-32-characters!!", "refresh-secret-of-32-characters!")
	in := editor()

	pair, err := s.GenerateTokenPair(in)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	claims, err := s.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, in.UserID.String(), claims.UserID)
	assert.Equal(t, in.UserID.String(), claims.Subject)
	assert.Equal(t, "editor", claims.Role)
	assert.True(t, claims.HasPermission("blog:write"))
	assert.True(t, claims.HasAnyPermission("invoice:write", "lead:read"))
	assert.False(t, claims.HasAnyPermission("invoice:write"))
	assert.False(t, claims.GetIssuedAtTime().IsZero())

	refresh, err := s.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, refresh.Permissions)
	assert.Empty(t, refresh.Email)
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestJWTService_Rejects(t *testing.T) {
	s := newService("access-secret-of-32-characters!!", "refresh-secret-of-32-characters!")
	pair, err := s.GenerateTokenPair(editor())
	require.NoError(t, err)

	shared := newService("one-secret-for-both-kinds-32-chr", "")
	sharedPair, err := shared.GenerateTokenPair(editor())
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: uuid.NewString(), Kind: kindAccess}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	otherIssuer := NewJWTService(config.JWTConfig{Secret: "access-secret-of-32-characters!!", Issuer: "elsewhere", AccessTokenExpiration: time.Minute})
	foreign, err := otherIssuer.GenerateTokenPair(editor())
	require.NoError(t, err)

	tests := []struct {
		name   string
		verify func(string) (*Claims, error)
		token  string
	}{
		{"refresh as access", s.ValidateAccessToken, pair.RefreshToken},
		{"access as refresh", s.ValidateRefreshToken, pair.AccessToken},
		{"shared key wrong kind", shared.ValidateAccessToken, sharedPair.RefreshToken},
		{"garbage", s.ValidateAccessToken, "not.a.token"},
		{"alg none", s.ValidateAccessToken, unsigned},
		{"other issuer", s.ValidateAccessToken, foreign.AccessToken},
		{"other key", newService("a-completely-different-secret!!!", "").ValidateAccessToken, pair.AccessToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTService_Expiry(t *testing.T) {
	s := newService("access-secret-of-32-characters!!", "")
	start := time.Now()
	s.now = func() time.Time { return start }

	pair, err := s.GenerateTokenPair(editor())
	require.NoError(t, err)

	s.now = func() time.Time { return start.Add(16 * time.Minute) }
	_, err = s.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
	_, err = s.ValidateRefreshToken(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestJWTService_Rotation(t *testing.T) {
	s := newService("access-secret-of-32-characters!!", "refresh-secret-of-32-characters!")
	in := editor()
	first, err := s.GenerateTokenPair(in)
	require.NoError(t, err)

	in.Role = "admin"
	in.Permissions = []string{"invoice:write"}
	second, consumed, err := s.RefreshTokenPair(first.RefreshToken, in)
	require.NoError(t, err)
	assert.Equal(t, 0, consumed.RefreshCount)

	access, err := s.ValidateAccessToken(second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", access.Role)
	assert.Equal(t, []string{"invoice:write"}, access.Permissions)

	refresh, err := s.ValidateRefreshToken(second.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 1, refresh.RefreshCount)

	t.Run("limit", func(t *testing.T) {
		third, _, err := s.RefreshTokenPair(second.RefreshToken, in)
		require.NoError(t, err)
		_, _, err = s.RefreshTokenPair(third.RefreshToken, in)
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})

	t.Run("different user", func(t *testing.T) {
		someoneElse := in
		someoneElse.UserID = uuid.New()
		_, _, err := s.RefreshTokenPair(first.RefreshToken, someoneElse)
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})
}

func TestClaims_RemainingTTL(t *testing.T) {
	now := time.Now()
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))}}

	assert.InDelta(t, time.Minute.Seconds(), c.RemainingTTL(now).Seconds(), 1)
	assert.Zero(t, c.RemainingTTL(now.Add(time.Hour)))
	assert.Zero(t, (&Claims{}).RemainingTTL(now))
}
