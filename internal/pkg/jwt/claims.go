// internal/pkg/jwt/claims.go
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind separates short-lived access tokens from refresh tokens.
type TokenKind int

const (
	KindAccess TokenKind = iota
	KindRefresh
)

func (k TokenKind) String() string {
	if k == KindRefresh {
		return "refresh"
	}
	return "access"
}

// UserClaims is the subject section of a session token.
type UserClaims struct {
	Email   string `json:"email"`
	UserUID string `json:"user_uid"`
	Role    string `json:"role,omitempty"`
}

// Claims represents the JWT claims
type Claims struct {
	User    UserClaims `json:"user"`
	Refresh bool       `json:"refresh"`
	jwt.RegisteredClaims
}

// Kind reports which kind of token the claims were issued as.
func (c *Claims) Kind() TokenKind {
	if c.Refresh {
		return KindRefresh
	}
	return KindAccess
}

// ExpiresAtTime returns exp as a time.Time, zero when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// RemainingLifetime is the time left until exp, never negative.
func (c *Claims) RemainingLifetime(now time.Time) time.Duration {
	left := c.ExpiresAtTime().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}
