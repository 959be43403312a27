// Package middleware provides HTTP middleware for the booking back office.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/travelcrm/backend/internal/infrastructure/auth"
	"github.com/travelcrm/backend/internal/infrastructure/logger"
)

// Context keys for JWT claims stored in the gin context.
const (
	// JWTClaimsKey is the gin context key for the full validated claims.
	JWTClaimsKey = "jwt_claims"
	// JWTUserIDKey is the gin context key for the authenticated user ID.
	JWTUserIDKey = "jwt_user_id"
	// JWTTenantIDKey is the gin context key for the authenticated tenant ID.
	JWTTenantIDKey = "jwt_tenant_id"

	// AuthHeaderKey is the header carrying the bearer token.
	AuthHeaderKey = "Authorization"
	// BearerPrefix is the expected authorization scheme prefix.
	BearerPrefix = "Bearer "
)

// JWTMiddlewareConfig configures the JWT authentication middleware.
type JWTMiddlewareConfig struct {
	// JWTService validates incoming tokens.
	JWTService *auth.JWTService
	// SkipPaths are exact paths that bypass authentication.
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that bypass authentication.
	SkipPathPrefixes []string
	// Logger records authentication failures. Optional.
	Logger *zap.Logger
}

// DefaultJWTConfig returns a middleware config that skips health endpoints.
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/health",
		},
	}
}

// JWTAuthMiddleware returns authentication middleware with default config.
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig returns authentication middleware that validates
// the bearer token, stores the claims in the gin context, and enriches the
// request context so downstream logs carry tenant and user IDs.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	skipPaths := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skipPaths[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skipPaths[path]; ok {
			c.Next()
			return
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			handleAuthError(c, cfg.Logger, err)
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg.Logger, err)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTTenantIDKey, claims.TenantID)

		ctx := c.Request.Context()
		ctxLog := logger.FromContext(ctx)
		ctx, ctxLog = logger.WithTenantID(ctx, ctxLog, claims.TenantID)
		ctx, _ = logger.WithUserID(ctx, ctxLog, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// OptionalJWTAuthMiddleware validates a token when present but lets
// unauthenticated requests through. Used for endpoints that behave
// differently for signed-in staff.
func OptionalJWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			c.Next()
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTTenantIDKey, claims.TenantID)
		c.Next()
	}
}

var errMissingAuthHeader = errors.New("missing authorization header")

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		return "", errMissingAuthHeader
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

// handleAuthError aborts the request with a 401 and a stable error code.
func handleAuthError(c *gin.Context, log *zap.Logger, err error) {
	code := "INVALID_TOKEN"
	message := "Invalid or malformed token"

	switch {
	case errors.Is(err, errMissingAuthHeader):
		code = "UNAUTHORIZED"
		message = "Authorization header is required"
	case errors.Is(err, auth.ErrExpiredToken):
		code = "TOKEN_EXPIRED"
		message = "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code = "TOKEN_NOT_YET_VALID"
		message = "Token is not valid yet"
	case errors.Is(err, auth.ErrMissingTenantID), errors.Is(err, auth.ErrMissingUserID):
		code = "INVALID_CLAIMS"
		message = "Token is missing required claims"
	}

	if log != nil {
		log.Warn("authentication failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", code),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// GetJWTClaims returns the validated claims from the gin context, or nil.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	value, exists := c.Get(JWTClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetJWTUserID returns the authenticated user ID string, or "".
func GetJWTUserID(c *gin.Context) string {
	value, exists := c.Get(JWTUserIDKey)
	if !exists {
		return ""
	}
	id, _ := value.(string)
	return id
}

// GetJWTTenantID returns the authenticated tenant ID string, or "".
func GetJWTTenantID(c *gin.Context) string {
	value, exists := c.Get(JWTTenantIDKey)
	if !exists {
		return ""
	}
	id, _ := value.(string)
	return id
}
