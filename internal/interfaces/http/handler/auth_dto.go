package handler

import (
	"time"

	appidentity "github.com/webstudio/backend/internal/application/identity"
)

// ============================================================================
// Auth Request DTOs
// ============================================================================

// LoginRequest represents the login request body
// @Description Login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=254" example:"admin@webstudio.cz"`
	Password string `json:"password" binding:"required,max=128" example:"password123"`
}

// RefreshTokenRequest represents the token refresh request body
// @Description Token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents the password change request body
// @Description Password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// ============================================================================
// Auth Response DTOs
// ============================================================================

// TokenResponse represents issued tokens
// @Description Access and refresh token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type" example:"Bearer"`
}

// LoginResponse represents the login response
// @Description Login response with tokens and the signed in user
type LoginResponse struct {
	Token TokenResponse       `json:"token"`
	User  appidentity.UserDTO `json:"user"`
}

func toTokenResponse(t appidentity.TokenResult) TokenResponse {
	return TokenResponse{
		AccessToken:           t.AccessToken,
		RefreshToken:          t.RefreshToken,
		AccessTokenExpiresAt:  t.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: t.RefreshTokenExpiresAt,
		TokenType:             t.TokenType,
	}
}
