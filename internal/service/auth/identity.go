// internal/service/auth/identity.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"bookly-service/internal/domain/user"
	xerrors "bookly-service/internal/pkg/errors"
	"bookly-service/internal/pkg/jwt"
)

// IdentityResolver maps accepted access-token claims to the stored user.
type IdentityResolver struct {
	users UserFinder
}

func NewIdentityResolver(users UserFinder) *IdentityResolver {
	return &IdentityResolver{users: users}
}

func (r *IdentityResolver) Resolve(ctx context.Context, claims *jwt.Claims) (*user.User, error) {
	if claims == nil || claims.User.Email == "" {
		return nil, fmt.Errorf("%w: token has no subject", xerrors.ErrInvalidToken)
	}

	u, err := r.users.FindByEmail(ctx, claims.User.Email)
	if errors.Is(err, xerrors.ErrUserNotFound) || (err == nil && u == nil) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	return u, nil
}
