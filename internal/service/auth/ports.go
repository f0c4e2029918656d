// internal/service/auth/ports.go
package auth

import (
	"context"
	"time"

	"bookly-service/internal/domain/book"
	"bookly-service/internal/domain/user"

	"github.com/google/uuid"
)

// UserFinder looks a user up by email. It returns xerrors.ErrUserNotFound
// when no account matches.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

type UserStore interface {
	UserFinder
	FindByUID(ctx context.Context, uid uuid.UUID) (*user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *user.User) error
	UpdateRole(ctx context.Context, uid uuid.UUID, role string) error
	UpdateVerified(ctx context.Context, uid uuid.UUID, verified bool) error
	List(ctx context.Context, filters *user.UserListFilters) ([]user.User, int64, error)
}

// Revoker is the token blocklist.
type Revoker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	RevokeFor(ctx context.Context, jti string, ttl time.Duration) error
}

type LoginLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, email string) error
}

// SessionNotifier pushes session and account events to live connections.
type SessionNotifier interface {
	ForceLogout(userUID, jti, reason string)
	AccountChanged(userUID, role string, verified bool)
}

type BookLister interface {
	ListByUser(ctx context.Context, userUID uuid.UUID) ([]book.Book, error)
}
