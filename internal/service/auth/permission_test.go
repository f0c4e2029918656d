package auth

import (
	"errors"
	"testing"

	"bookly-service/internal/domain/user"
	xerrors "bookly-service/internal/pkg/errors"
)

func TestPermissionGateAuthorize(t *testing.T) {
	tests := []struct {
		name string
		gate *PermissionGate
		user *user.User
		want error
	}{
		{"verified user on user gate", UserAndAdmin, &user.User{Role: "user", IsVerified: true}, nil},
		{"verified admin on admin gate", AdminOnly, &user.User{Role: "admin", IsVerified: true}, nil},
		{"verified user on admin gate", AdminOnly, &user.User{Role: "user", IsVerified: true}, xerrors.ErrInsufficientPermission},
		{"unverified admin", AdminOnly, &user.User{Role: "admin", IsVerified: false}, xerrors.ErrAccountNotVerified},
		{"unverified and wrong role", AdminOnly, &user.User{Role: "user", IsVerified: false}, xerrors.ErrAccountNotVerified},
		{"unknown role", UserAndAdmin, &user.User{Role: "guest", IsVerified: true}, xerrors.ErrInsufficientPermission},
		{"empty gate", NewPermissionGate(), &user.User{Role: "admin", IsVerified: true}, xerrors.ErrInsufficientPermission},
		{"nil user", UserAndAdmin, nil, xerrors.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.gate.Authorize(tt.user)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPermissionGateRolesDeduplicated(t *testing.T) {
	g := NewPermissionGate("admin", "user", "admin")
	if got := g.Roles(); len(got) != 2 || got[0] != "admin" || got[1] != "user" {
		t.Fatalf("roles = %v", got)
	}
}
