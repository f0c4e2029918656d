// internal/service/auth/guard.go
package auth

import (
	"context"
	"errors"
	"fmt"

	xerrors "bookly-service/internal/pkg/errors"
	"bookly-service/internal/pkg/jwt"
	"bookly-service/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Guard admits a request only when its bearer token verifies, has not been
// revoked and is of the kind the route expects. Access and refresh routes
// share one pipeline and differ only in the TokenKind they pass.
type Guard struct {
	codec   *jwt.Codec
	revoker Revoker
	logger  *zap.Logger
}

func NewGuard(codec *jwt.Codec, revoker Revoker, logger *zap.Logger) *Guard {
	return &Guard{codec: codec, revoker: revoker, logger: logger}
}

// Check verifies raw and returns its claims. Checks run in a fixed order:
// signature and expiry, then revocation, then token kind.
func (g *Guard) Check(ctx context.Context, raw string, kind jwt.TokenKind) (*jwt.Claims, error) {
	if raw == "" {
		return nil, g.reject("missing", "", xerrors.ErrMissingToken)
	}

	claims, err := g.codec.Parse(raw)
	if err != nil {
		return nil, g.reject(jwt.RejectReason(err), "", err)
	}

	revoked, err := g.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		if !errors.Is(err, xerrors.ErrAuthInfrastructure) {
			err = fmt.Errorf("%w: %w", xerrors.ErrAuthInfrastructure, err)
		}
		return nil, g.reject("store_unavailable", claims.ID, err)
	}
	if revoked {
		return nil, g.reject("revoked", claims.ID, fmt.Errorf("%w: token revoked", xerrors.ErrInvalidToken))
	}

	if claims.Kind() != kind {
		if kind == jwt.KindRefresh {
			return nil, g.reject("wrong_kind", claims.ID, xerrors.ErrRefreshTokenRequired)
		}
		return nil, g.reject("wrong_kind", claims.ID, xerrors.ErrAccessTokenRequired)
	}

	return claims, nil
}

// Access checks raw as an access token.
func (g *Guard) Access(ctx context.Context, raw string) (*jwt.Claims, error) {
	return g.Check(ctx, raw, jwt.KindAccess)
}

// Refresh checks raw as a refresh token.
func (g *Guard) Refresh(ctx context.Context, raw string) (*jwt.Claims, error) {
	return g.Check(ctx, raw, jwt.KindRefresh)
}

func (g *Guard) reject(reason, jti string, err error) error {
	metrics.AuthRejections.WithLabelValues(reason).Inc()

	fields := []zap.Field{zap.String("reason", reason), zap.Error(err)}
	if jti != "" {
		fields = append(fields, zap.String("jti", jti))
	}
	if errors.Is(err, xerrors.ErrAuthInfrastructure) {
		g.logger.Error("token check failed", fields...)
	} else {
		g.logger.Warn("token rejected", fields...)
	}

	return err
}
