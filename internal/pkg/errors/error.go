package xerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a user-facing failure kind. Code is the stable identifier sent to
// clients, Status the HTTP status the boundary maps it to.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Auth errors
var (
	ErrMissingToken           = newError("missing_token", http.StatusUnauthorized, "missing authorization token")
	ErrInvalidToken           = newError("invalid_token", http.StatusUnauthorized, "invalid or expired token")
	ErrAccessTokenRequired    = newError("access_token_required", http.StatusUnauthorized, "please provide an access token")
	ErrRefreshTokenRequired   = newError("refresh_token_required", http.StatusUnauthorized, "please provide a refresh token")
	ErrUserNotFound           = newError("user_not_found", http.StatusNotFound, "user not found")
	ErrAccountNotVerified     = newError("account_not_verified", http.StatusForbidden, "account not verified")
	ErrInsufficientPermission = newError("insufficient_permission", http.StatusForbidden, "you do not have enough permissions to perform this action")
	ErrInvalidCredentials     = newError("invalid_credentials", http.StatusUnauthorized, "invalid email or password")
	ErrUserAlreadyExists      = newError("user_already_exists", http.StatusConflict, "user with this email already exists")
	ErrAuthInfrastructure     = newError("auth_infrastructure_error", http.StatusServiceUnavailable, "authentication backend unavailable")
)

// ErrTokenExpired is reported for well-signed tokens past their exp. It
// unwraps to ErrInvalidToken so callers that only care about validity can
// match either.
var ErrTokenExpired = fmt.Errorf("token expired: %w", ErrInvalidToken)

// Common reusable application errors
var (
	ErrNotFound       = newError("not_found", http.StatusNotFound, "resource not found")
	ErrBookNotFound   = newError("book_not_found", http.StatusNotFound, "book not found")
	ErrReviewNotFound = newError("review_not_found", http.StatusNotFound, "review not found")
	ErrForbidden      = newError("forbidden", http.StatusForbidden, "forbidden")
	ErrBadRequest     = newError("bad_request", http.StatusBadRequest, "bad request")
	ErrRateLimited    = newError("rate_limited", http.StatusTooManyRequests, "too many requests")
	ErrInternal       = newError("internal_error", http.StatusInternalServerError, "internal server error")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Kind returns the first *Error in err's chain, or ErrInternal when there is none.
func Kind(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
