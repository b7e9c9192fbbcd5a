package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	userIDKey = "user_id"
	claimsKey = "claims"
)

// TokenValidator is an interface for validating auth tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// AuthMiddleware rejects requests without a valid token
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, validator) {
			return
		}
		if _, ok := c.Get(userIDKey); !ok {
			c.Error(service.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a token is sent. A malformed or
// invalid token is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, validator) {
			return
		}
		c.Next()
	}
}

// authenticate stores the caller in the context when a token is present and
// aborts on a bad one.
func authenticate(c *gin.Context, validator TokenValidator) bool {
	header := c.GetHeader("Authorization")
	if header == "" {
		return true
	}

	// Accept both "Token <key>" and "Bearer <key>"
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || (scheme != "Token" && scheme != "Bearer") || token == "" {
		c.Error(service.ErrInvalidToken)
		c.Abort()
		return false
	}

	claims, err := validator.ValidateToken(c.Request.Context(), strings.TrimSpace(token))
	if err != nil {
		c.Error(err)
		c.Abort()
		return false
	}

	c.Set(userIDKey, claims.UserID)
	c.Set(claimsKey, claims)
	return true
}

// UserID returns the authenticated caller, or zero for anonymous requests
func UserID(c *gin.Context) uint {
	if id, ok := c.Get(userIDKey); ok {
		if uid, ok := id.(uint); ok {
			return uid
		}
	}
	return 0
}

// Claims returns the token claims of the authenticated caller
func Claims(c *gin.Context) *types.TokenClaims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*types.TokenClaims); ok {
			return claims
		}
	}
	return nil
}
