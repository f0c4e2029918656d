// internal/pkg/session/blocklist.go
package session

import (
	"context"
	"fmt"
	"time"

	xerrors "bookly-service/internal/pkg/errors"
	"bookly-service/internal/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const blocklistPrefix = "blocklist:"

// Blocklist records revoked token identifiers in Redis. Entries expire on
// their own once the token they name could no longer verify anyway. Every
// check goes to Redis so a revoke is visible to all instances at once.
type Blocklist struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewBlocklist returns a blocklist whose entries live for ttl, which should
// be the access-token lifetime.
func NewBlocklist(client redis.UniversalClient, ttl time.Duration) *Blocklist {
	return &Blocklist{client: client, ttl: ttl}
}

// Revoke blocks jti for the configured lifetime. Revoking twice is harmless.
func (b *Blocklist) Revoke(ctx context.Context, jti string) error {
	return b.RevokeFor(ctx, jti, b.ttl)
}

// RevokeFor blocks jti for ttl, or the configured lifetime when that is longer.
func (b *Blocklist) RevokeFor(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return fmt.Errorf("%w: empty jti", xerrors.ErrInvalidToken)
	}
	if ttl < b.ttl {
		ttl = b.ttl
	}

	if err := b.client.Set(ctx, b.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: revoke token: %w", xerrors.ErrAuthInfrastructure, err)
	}

	metrics.TokensRevoked.Inc()
	return nil
}

// IsRevoked reports whether jti is on the blocklist. A Redis failure is an
// error, never a "not revoked" answer.
func (b *Blocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, fmt.Errorf("%w: empty jti", xerrors.ErrInvalidToken)
	}

	n, err := b.client.Exists(ctx, b.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: check blocklist: %w", xerrors.ErrAuthInfrastructure, err)
	}
	return n > 0, nil
}

func (b *Blocklist) key(jti string) string {
	return blocklistPrefix + jti
}
