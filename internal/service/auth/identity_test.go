package auth

import (
	"context"
	"errors"
	"testing"

	xerrors "bookly-service/internal/pkg/errors"
	"bookly-service/internal/pkg/jwt"
)

func TestIdentityResolver(t *testing.T) {
	users := newMemUserStore()
	carol := users.add(t, "carol@example.com", "pw", "user", true)
	resolver := NewIdentityResolver(users)
	ctx := context.Background()

	got, err := resolver.Resolve(ctx, &jwt.Claims{User: jwt.UserClaims{Email: "carol@example.com"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.UID != carol.UID {
		t.Errorf("uid = %v, want %v", got.UID, carol.UID)
	}

	_, err = resolver.Resolve(ctx, &jwt.Claims{User: jwt.UserClaims{Email: "ghost@example.com"}})
	if !errors.Is(err, xerrors.ErrUserNotFound) {
		t.Errorf("unknown email err = %v, want ErrUserNotFound", err)
	}

	_, err = resolver.Resolve(ctx, &jwt.Claims{})
	if !errors.Is(err, xerrors.ErrInvalidToken) {
		t.Errorf("empty subject err = %v, want ErrInvalidToken", err)
	}

	users.findErr = errors.New("connection reset")
	_, err = resolver.Resolve(ctx, &jwt.Claims{User: jwt.UserClaims{Email: "carol@example.com"}})
	if err == nil || errors.Is(err, xerrors.ErrUserNotFound) {
		t.Errorf("store failure err = %v, want a wrapped store error", err)
	}
}
