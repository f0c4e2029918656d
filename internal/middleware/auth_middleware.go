// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"errors"

	"bookly-service/internal/domain/user"
	xerrors "bookly-service/internal/pkg/errors"
	"bookly-service/internal/pkg/jwt"
	"bookly-service/internal/pkg/metrics"
	"bookly-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	claimsKey = "claims"
	userKey   = "user"
)

// TokenGuard runs the verify, revocation and kind checks for one token kind.
type TokenGuard interface {
	Check(ctx context.Context, raw string, kind jwt.TokenKind) (*jwt.Claims, error)
}

// UserResolver loads the account behind accepted access claims.
type UserResolver interface {
	Resolve(ctx context.Context, claims *jwt.Claims) (*user.User, error)
}

// Authorizer decides whether a resolved user may use a route.
type Authorizer interface {
	Authorize(u *user.User) error
}

type AuthMiddleware struct {
	guard    TokenGuard
	resolver UserResolver
	logger   *zap.Logger
}

func NewAuthMiddleware(guard TokenGuard, resolver UserResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{guard: guard, resolver: resolver, logger: logger}
}

// AccessToken admits requests carrying a valid, unrevoked access token.
func (m *AuthMiddleware) AccessToken() gin.HandlerFunc {
	return m.requireToken(jwt.KindAccess)
}

// RefreshToken admits requests carrying a valid, unrevoked refresh token.
func (m *AuthMiddleware) RefreshToken() gin.HandlerFunc {
	return m.requireToken(jwt.KindRefresh)
}

func (m *AuthMiddleware) requireToken(kind jwt.TokenKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.guard.Check(c.Request.Context(), extractToken(c), kind)
		if err != nil {
			response.FromError(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CurrentUser resolves the account behind the access token once per request.
// MUST be used after AccessToken()
func (m *AuthMiddleware) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			response.FromError(c, xerrors.ErrMissingToken)
			return
		}

		u, err := m.resolver.Resolve(c.Request.Context(), claims)
		if err != nil {
			if !errors.Is(err, xerrors.ErrUserNotFound) && !errors.Is(err, xerrors.ErrInvalidToken) {
				m.logger.Error("failed to resolve current user",
					zap.String("email", claims.User.Email),
					zap.Error(err),
				)
			}
			response.FromError(c, err)
			return
		}

		c.Set(userKey, u)
		c.Next()
	}
}

// RequireRoles runs the permission gate against the resolved user.
// MUST be used after CurrentUser()
func (m *AuthMiddleware) RequireRoles(gate Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, _ := GetUser(c)
		if err := gate.Authorize(u); err != nil {
			switch {
			case errors.Is(err, xerrors.ErrAccountNotVerified):
				metrics.AuthRejections.WithLabelValues("not_verified").Inc()
			case errors.Is(err, xerrors.ErrInsufficientPermission):
				metrics.AuthRejections.WithLabelValues("insufficient_role").Inc()
			}
			response.FromError(c, err)
			return
		}
		c.Next()
	}
}

// Authenticated returns the full chain for routes that need a known user
// with one of the gate's roles.
func (m *AuthMiddleware) Authenticated(gate Authorizer) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.AccessToken(),
		m.CurrentUser(),
		m.RequireRoles(gate),
	}
}
