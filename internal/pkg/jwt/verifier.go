// internal/pkg/jwt/verifier.go
package jwt

import (
	"errors"
	"fmt"

	xerrors "bookly-service/internal/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Parse verifies signature, algorithm and expiry and returns the claims.
// Every failure wraps xerrors.ErrInvalidToken; expiry additionally wraps
// xerrors.ErrTokenExpired.
func (c *Codec) Parse(tokenString string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		options = append(options, jwt.WithIssuer(c.issuer))
	}

	token, err := jwt.NewParser(options...).ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", xerrors.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", xerrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", xerrors.ErrInvalidToken)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", xerrors.ErrInvalidToken)
	}

	return claims, nil
}

// RejectReason classifies a Parse failure for logs and metrics. Clients
// only ever see invalid_token.
func RejectReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, xerrors.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
