// internal/service/auth/admin.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"bookly-service/internal/domain/user"
	xerrors "bookly-service/internal/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ListUsers lists accounts for administrators
func (s *AuthService) ListUsers(ctx context.Context, filters *user.UserListFilters) (*user.UserListResponse, error) {
	users, total, err := s.users.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	totalPages := 0
	if filters.PageSize > 0 {
		totalPages = int((total + int64(filters.PageSize) - 1) / int64(filters.PageSize))
	}

	return &user.UserListResponse{
		Users:      users,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// SetRole changes a user's role. The change applies to the next request the
// user makes because roles are always read from the store.
func (s *AuthService) SetRole(ctx context.Context, uid uuid.UUID, role string) (*user.User, error) {
	if !user.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", xerrors.ErrBadRequest, role)
	}
	if err := s.users.UpdateRole(ctx, uid, role); err != nil {
		return nil, err
	}

	s.logger.Info("user role changed", zap.String("user_uid", uid.String()), zap.String("role", role))
	return s.reloadAndNotify(ctx, uid)
}

// SetVerified marks an account verified or unverified
func (s *AuthService) SetVerified(ctx context.Context, uid uuid.UUID, verified bool) (*user.User, error) {
	if err := s.users.UpdateVerified(ctx, uid, verified); err != nil {
		return nil, err
	}

	s.logger.Info("user verification changed", zap.String("user_uid", uid.String()), zap.Bool("is_verified", verified))
	return s.reloadAndNotify(ctx, uid)
}

func (s *AuthService) reloadAndNotify(ctx context.Context, uid uuid.UUID) (*user.User, error) {
	u, err := s.users.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.AccountChanged(u.UID.String(), u.Role, u.IsVerified)
	}
	return u, nil
}

// EnsureAdmin makes sure a verified admin account exists for email (called on startup)
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("admin email and password must be provided")
	}
	email = normalizeEmail(email)

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != user.RoleAdmin {
			if err := s.users.UpdateRole(ctx, existing.UID, user.RoleAdmin); err != nil {
				return fmt.Errorf("failed to promote admin: %w", err)
			}
		}
		if !existing.IsVerified {
			if err := s.users.UpdateVerified(ctx, existing.UID, true); err != nil {
				return fmt.Errorf("failed to verify admin: %w", err)
			}
		}
		s.logger.Info("admin account already exists", zap.String("email", email))
		return nil
	case !errors.Is(err, xerrors.ErrUserNotFound):
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &user.User{
		UID:          uuid.New(),
		Username:     "admin",
		Email:        email,
		FirstName:    "Bookly",
		LastName:     "Admin",
		Role:         user.RoleAdmin,
		IsVerified:   true,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("admin account created", zap.String("email", email))
	return nil
}
