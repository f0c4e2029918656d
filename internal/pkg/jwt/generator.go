// internal/pkg/jwt/generator.go
package jwt

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Issue signs a token of the given kind for user. A non-positive lifetime
// falls back to the configured lifetime for that kind.
func (c *Codec) Issue(user UserClaims, kind TokenKind, lifetime time.Duration) (string, *Claims, error) {
	if lifetime <= 0 {
		lifetime = c.defaultLifetime(kind)
	}

	now := c.now()
	jti, err := newJTI(now)
	if err != nil {
		return "", nil, err
	}

	claims := &Claims{
		User:    user,
		Refresh: kind == KindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   user.UserUID,
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return signed, claims, nil
}

// IssueAccess issues an access token with the configured access lifetime.
func (c *Codec) IssueAccess(user UserClaims) (string, *Claims, error) {
	return c.Issue(user, KindAccess, c.accessTTL)
}

// IssueRefresh issues a refresh token with the configured refresh lifetime.
func (c *Codec) IssueRefresh(user UserClaims) (string, *Claims, error) {
	return c.Issue(user, KindRefresh, c.refreshTTL)
}

func (c *Codec) defaultLifetime(kind TokenKind) time.Duration {
	if kind == KindRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// newJTI draws the ULID entropy straight from crypto/rand; ulid.Make uses a
// math/rand source which is not acceptable for revocation keys.
func newJTI(now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate jti: %w", err)
	}
	return id.String(), nil
}
