// internal/domain/user/entity.go
package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	UID          uuid.UUID `json:"uid" db:"uid"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Role         string    `json:"role" db:"role"`
	IsVerified   bool      `json:"is_verified" db:"is_verified"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ValidRole reports whether role is one the service assigns.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
