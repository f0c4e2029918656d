// internal/middleware/helpers.go
package middleware

import (
	"strings"

	"bookly-service/internal/domain/user"
	"bookly-service/internal/pkg/jwt"
	"bookly-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// GetClaims returns the token claims stored by AccessToken() or RefreshToken()
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// GetUser returns the user stored by CurrentUser()
func GetUser(c *gin.Context) (*user.User, bool) {
	v, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok
}

// MustGetClaims gets the claims from context or panics
func MustGetClaims(c *gin.Context) *jwt.Claims {
	claims, ok := GetClaims(c)
	if !ok {
		panic("claims not found in context")
	}
	return claims
}

// MustGetUser gets the current user from context or panics
func MustGetUser(c *gin.Context) *user.User {
	u, ok := GetUser(c)
	if !ok {
		panic("user not found in context")
	}
	return u
}

// SetClaims stores claims the way AccessToken() does. Used by handlers that
// authenticate outside the middleware chain.
func SetClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(claimsKey, claims)
}

// SetUser stores the resolved user the way CurrentUser() does.
func SetUser(c *gin.Context, u *user.User) {
	c.Set(userKey, u)
}

// ParseUUIDParam reads a uuid path parameter, answering 400 when it is malformed.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.ValidationError(c, "invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}
