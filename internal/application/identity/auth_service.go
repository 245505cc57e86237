package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/identity"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
		now:        time.Now,
	}
}

// Login authenticates a user by email and password and returns tokens.
// Unknown emails and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("email", input.Email), zap.String("ip", input.IP))

	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to load user during login", zap.Error(err))
			return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to authenticate", err)
		}
		s.logger.Warn("User not found during login", zap.String("email", input.Email))
		return nil, shared.ErrInvalidCredentials
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("email", input.Email))
		return nil, shared.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Warn("Login attempt for deactivated account", zap.String("email", input.Email))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	pair, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to generate tokens", err)
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Update(ctx, user); err != nil {
		// the login itself succeeded
		s.logger.Error("Failed to record login", zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	return &LoginResult{
		TokenResult: toTokenResult(pair),
		User:        ToUserDTO(user),
	}, nil
}

// Refresh rotates a token pair. The old refresh token is revoked and the
// new pair carries the user's current role and permissions.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, tokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, tokenError(auth.ErrInvalidClaims)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_TOKEN", "User no longer exists")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	// refresh tokens are single use
	fresh, err := s.blacklist.Consume(ctx, claims.ID, claims.RemainingTTL(s.now()))
	if err != nil {
		s.logger.Error("Failed to revoke rotated refresh token", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to rotate tokens", err)
	}
	if !fresh {
		return nil, shared.WrapDomainError("TOKEN_REVOKED", "Token has been revoked", auth.ErrTokenBlacklisted)
	}

	pair, _, err := s.jwtService.RefreshTokenPair(refreshToken, tokenInput(user))
	if err != nil {
		return nil, tokenError(err)
	}

	result := toTokenResult(pair)
	return &result, nil
}

// Logout revokes an access token until it expires
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil
		}
		return tokenError(err)
	}

	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL(s.now())); err != nil {
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to revoke token", err)
	}
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// Authenticate validates an access token and checks revocation
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, tokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Me returns the current user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// RevokeSessions rejects every token issued to the user so far
func (s *AuthService) RevokeSessions(ctx context.Context, userID uuid.UUID) error {
	return s.blacklist.RevokeUser(ctx, userID.String(), s.jwtService.RefreshTokenExpiration())
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to check token", err)
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			return shared.WrapDomainError("INTERNAL_ERROR", "Failed to check token", err)
		}
	}
	if revoked {
		return shared.WrapDomainError("TOKEN_REVOKED", "Token has been revoked", auth.ErrTokenBlacklisted)
	}
	return nil
}

func tokenInput(user *identity.User) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        string(user.Role),
		Permissions: user.Permissions(),
	}
}

func toTokenResult(pair *auth.TokenPair) TokenResult {
	return TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.WrapDomainError("TOKEN_EXPIRED", "Token has expired", err)
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.WrapDomainError("REFRESH_LIMIT", "Session must be renewed by logging in", err)
	default:
		return shared.WrapDomainError("INVALID_TOKEN", "Invalid token", err)
	}
}
