package auth

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/infrastructure/config"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// TokenPair is returned by login and refresh
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// GenerateTokenInput is the user snapshot written into a new pair
type GenerateTokenInput struct {
	UserID      uuid.UUID
	Email       string
	Role        string
	Permissions []string
}

// signer holds the HMAC key and lifetime of one token kind
type signer struct {
	kind   tokenKind
	secret []byte
	ttl    time.Duration
}

// JWTService issues and verifies HS256 admin tokens
type JWTService struct {
	access     signer
	refresh    signer
	issuer     string
	maxRefresh int
	now        func() time.Time
}

// NewJWTService builds the service from config. Without a refresh secret
// both kinds share one key and are told apart by the typ claim.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		access:     signer{kind: kindAccess, secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
		refresh:    signer{kind: kindRefresh, secret: []byte(cmp.Or(cfg.RefreshSecret, cfg.Secret)), ttl: cfg.RefreshTokenExpiration},
		issuer:     cfg.Issuer,
		maxRefresh: cfg.MaxRefreshCount,
		now:        time.Now,
	}
}

// AccessTokenExpiration is the access token lifetime
func (s *JWTService) AccessTokenExpiration() time.Duration { return s.access.ttl }

// RefreshTokenExpiration is the refresh token lifetime
func (s *JWTService) RefreshTokenExpiration() time.Duration { return s.refresh.ttl }

// GenerateTokenPair issues a pair after a successful login
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	return s.issue(input, 0)
}

// RefreshTokenPair trades a refresh token for a new pair. input must be
// loaded fresh from the user record so role changes apply on rotation.
// The returned claims belong to the consumed refresh token.
func (s *JWTService) RefreshTokenPair(refreshToken string, input GenerateTokenInput) (*TokenPair, *Claims, error) {
	old, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	if old.RefreshCount >= s.maxRefresh {
		return nil, nil, ErrMaxRefreshExceeded
	}
	if id, err := old.GetUserUUID(); err != nil || id != input.UserID {
		return nil, nil, ErrInvalidClaims
	}
	pair, err := s.issue(input, old.RefreshCount+1)
	if err != nil {
		return nil, nil, err
	}
	return pair, old, nil
}

// ValidateAccessToken verifies an access token
func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.verify(s.access, token)
}

// ValidateRefreshToken verifies a refresh token
func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.verify(s.refresh, token)
}

func (s *JWTService) issue(in GenerateTokenInput, refreshCount int) (*TokenPair, error) {
	now := s.now()

	access := s.claims(s.access, in.UserID, now)
	access.Email = in.Email
	access.Role = in.Role
	access.Permissions = in.Permissions

	refresh := s.claims(s.refresh, in.UserID, now)
	refresh.RefreshCount = refreshCount

	pair := &TokenPair{
		AccessTokenExpiresAt:  access.ExpiresAt.Time,
		RefreshTokenExpiresAt: refresh.ExpiresAt.Time,
		TokenType:             "Bearer",
	}
	var err error
	if pair.AccessToken, err = s.access.sign(access); err != nil {
		return nil, err
	}
	if pair.RefreshToken, err = s.refresh.sign(refresh); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *JWTService) claims(k signer, userID uuid.UUID, now time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(k.ttl)),
		},
		UserID: userID.String(),
		Kind:   k.kind,
	}
}

func (k signer) sign(c *Claims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(k.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", k.kind, err)
	}
	return token, nil
}

func (s *JWTService) verify(k signer, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return k.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case claims.Kind != k.kind:
		return nil, fmt.Errorf("%w: %s token where %s expected", ErrInvalidToken, claims.Kind, k.kind)
	case claims.UserID == "":
		return nil, fmt.Errorf("%w: no user_id", ErrInvalidClaims)
	}
	return claims, nil
}
