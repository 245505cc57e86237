package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/auth"
	"github.com/webstudio/backend/internal/infrastructure/logger"
	"github.com/webstudio/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Gin keys populated for authenticated requests
const (
	ClaimsKey      = "auth.claims"
	UserIDKey      = "auth.user_id"
	PermissionsKey = "auth.permissions"
)

const bearer = "Bearer "

// Authenticator validates an access token, revocation included
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
}

// AuthConfig configures Authenticate
type AuthConfig struct {
	Authenticator Authenticator
	// Public paths pass without a token. A trailing "*" matches a prefix.
	Public []string
	// OnError replaces the default 401 response
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

func (cfg AuthConfig) isPublic(path string) bool {
	for _, p := range cfg.Public {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		} else if path == p {
			return true
		}
	}
	return false
}

// Authenticate rejects requests without a valid bearer token
func Authenticate(a Authenticator) gin.HandlerFunc {
	return AuthenticateWithConfig(AuthConfig{Authenticator: a})
}

// AuthenticateWithConfig is Authenticate with public paths and a custom error hook
func AuthenticateWithConfig(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	reject := func(c *gin.Context, err error) {
		defer c.Abort()
		if cfg.OnError != nil {
			cfg.OnError(c, err)
			return
		}
		log.Warn("Rejected request token", zap.String("path", c.Request.URL.Path), zap.Error(err))
		code, msg, status := authFailure(err)
		c.JSON(status, dto.Fail(code, msg, GetRequestID(c)))
	}

	return func(c *gin.Context) {
		if cfg.isPublic(c.Request.URL.Path) {
			c.Next()
			return
		}
		token, ok := BearerToken(c)
		if !ok {
			reject(c, shared.NewDomainError("UNAUTHORIZED", "Authentication required"))
			return
		}
		claims, err := cfg.Authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			reject(c, err)
			return
		}
		bind(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when the request carries a valid token and
// never rejects.
func OptionalAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := BearerToken(c); ok {
			if claims, err := a.Authenticate(c.Request.Context(), token); err == nil {
				bind(c, claims)
			}
		}
		c.Next()
	}
}

// authFailure maps a failed authentication to the response. Every failure
// is a 401 except a broken token store, which stays a 500.
func authFailure(err error) (code, msg string, status int) {
	code, msg = "UNAUTHORIZED", "Authentication required"
	var de *shared.DomainError
	if errors.As(err, &de) {
		code, msg = de.Code, de.Message
	}
	if _, status = dto.Resolve(code); status != http.StatusInternalServerError {
		status = http.StatusUnauthorized
	}
	return code, msg, status
}

// BearerToken reads the token from the Authorization header
func BearerToken(c *gin.Context) (string, bool) {
	v, ok := strings.CutPrefix(c.GetHeader("Authorization"), bearer)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func bind(c *gin.Context, claims *auth.Claims) {
	c.Set(ClaimsKey, claims)
	c.Set(UserIDKey, claims.UserID)
	c.Set(PermissionsKey, claims.Permissions)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
}

// Claims returns the authenticated claims or nil
func Claims(c *gin.Context) *auth.Claims {
	v, _ := c.Get(ClaimsKey)
	claims, _ := v.(*auth.Claims)
	return claims
}

// UserID returns the authenticated user id, empty for anonymous requests
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// Permissions returns the permissions of the authenticated user
func Permissions(c *gin.Context) []string {
	return c.GetStringSlice(PermissionsKey)
}
