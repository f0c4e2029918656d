// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookly-service/internal/domain/user"
	xerrors "bookly-service/internal/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `uid, username, email, first_name, last_name, role,
		       is_verified, password_hash, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.UID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Role,
		&u.IsVerified, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			uid, username, email, first_name, last_name, role, is_verified, password_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		u.UID, u.Username, u.Email, u.FirstName, u.LastName, u.Role, u.IsVerified, u.PasswordHash,
	).Scan(&u.CreatedAt, &u.UpdatedAt)

	if isUniqueViolation(err) {
		return xerrors.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return u, nil
}

// FindByUID retrieves a user by uid
func (r *UserRepository) FindByUID(ctx context.Context, uid uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return u, nil
}

// ExistsByEmail checks whether an account already uses email
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// UpdateRole sets a user's role
func (r *UserRepository) UpdateRole(ctx context.Context, uid uuid.UUID, role string) error {
	query := `UPDATE users SET role = $1, updated_at = $2 WHERE uid = $3`

	result, err := r.db.Exec(ctx, query, role, time.Now(), uid)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}

	return nil
}

// UpdateVerified sets a user's verification flag
func (r *UserRepository) UpdateVerified(ctx context.Context, uid uuid.UUID, verified bool) error {
	query := `UPDATE users SET is_verified = $1, updated_at = $2 WHERE uid = $3`

	result, err := r.db.Exec(ctx, query, verified, time.Now(), uid)
	if err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}

	return nil
}

// List retrieves users with filters
func (r *UserRepository) List(ctx context.Context, filters *user.UserListFilters) ([]user.User, int64, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if filters.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argPos))
		args = append(args, filters.Role)
		argPos++
	}

	if filters.IsVerified != nil {
		conditions = append(conditions, fmt.Sprintf("is_verified = $%d", argPos))
		args = append(args, *filters.IsVerified)
		argPos++
	}

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(username ILIKE $%d OR email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)",
			argPos, argPos, argPos, argPos,
		))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users WHERE %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	page, pageSize, offset := normalizePage(filters.Page, filters.PageSize)
	filters.Page, filters.PageSize = page, pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, userColumns, whereClause, argPos, argPos+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}

	return users, total, rows.Err()
}
