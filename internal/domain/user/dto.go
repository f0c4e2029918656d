// internal/domain/user/dto.go
package user

import (
	"time"

	"bookly-service/internal/domain/book"
)

// SignupRequest for account creation
type SignupRequest struct {
	Username  string `json:"username" binding:"required,max=10"`
	Email     string `json:"email" binding:"required,email,max=50"`
	Password  string `json:"password" binding:"required,min=4"`
	FirstName string `json:"first_name" binding:"required,max=25"`
	LastName  string `json:"last_name" binding:"required,max=25"`
}

// LoginRequest for user login
type LoginRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	IPAddress string `json:"-"`
}

// UserInfo is the subject returned alongside issued tokens.
type UserInfo struct {
	Email string `json:"email"`
	UID   string `json:"uid"`
}

// LoginResponse successful login response
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserInfo  `json:"user"`
}

type RefreshResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// UserWithBooks is returned by /auth/me.
type UserWithBooks struct {
	User
	Books []book.Book `json:"books"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

type UpdateVerifiedRequest struct {
	IsVerified *bool `json:"is_verified" binding:"required"`
}

type UserListFilters struct {
	Role       string `form:"role" binding:"omitempty,oneof=user admin"`
	IsVerified *bool  `form:"is_verified"`
	Search     string `form:"search"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size" binding:"omitempty,max=100"`
}

type UserListResponse struct {
	Users      []User `json:"users"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}
