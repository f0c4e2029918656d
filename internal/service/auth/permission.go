// internal/service/auth/permission.go
package auth

import (
	"bookly-service/internal/domain/user"
	xerrors "bookly-service/internal/pkg/errors"
)

// PermissionGate allows verified users holding one of a fixed set of roles.
// Gates are built once at router setup and only read afterwards.
type PermissionGate struct {
	roles map[string]struct{}
	names []string
}

func NewPermissionGate(roles ...string) *PermissionGate {
	g := &PermissionGate{roles: make(map[string]struct{}, len(roles))}
	for _, r := range roles {
		if _, dup := g.roles[r]; dup {
			continue
		}
		g.roles[r] = struct{}{}
		g.names = append(g.names, r)
	}
	return g
}

// Authorize checks verification before role, so an unverified admin gets
// account_not_verified rather than a role error.
func (g *PermissionGate) Authorize(u *user.User) error {
	if u == nil {
		return xerrors.ErrUserNotFound
	}
	if !u.IsVerified {
		return xerrors.ErrAccountNotVerified
	}
	if _, ok := g.roles[u.Role]; !ok {
		return xerrors.ErrInsufficientPermission
	}
	return nil
}

func (g *PermissionGate) Roles() []string {
	return append([]string(nil), g.names...)
}

var (
	AdminOnly    = NewPermissionGate(user.RoleAdmin)
	UserAndAdmin = NewPermissionGate(user.RoleAdmin, user.RoleUser)
)
