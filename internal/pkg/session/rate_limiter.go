// internal/pkg/session/rate_limiter.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxLoginAttempts   = 5
	loginAttemptWindow = 15 * time.Minute
)

type RateLimiter struct {
	client redis.UniversalClient
}

func NewRateLimiter(client redis.UniversalClient) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckLoginAttempt checks if login attempt is allowed
func (r *RateLimiter) CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error) {
	key := loginKey(ip, email)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment login attempt: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		if err := r.client.Expire(ctx, key, loginAttemptWindow).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set login attempt window: %w", err)
		}
	}

	remaining := maxLoginAttempts - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= maxLoginAttempts, remaining, nil
}

// GetRemainingAttempts returns remaining login attempts
func (r *RateLimiter) GetRemainingAttempts(ctx context.Context, ip, email string) (int64, error) {
	count, err := r.client.Get(ctx, loginKey(ip, email)).Int64()
	if err == redis.Nil {
		return maxLoginAttempts, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get login attempts: %w", err)
	}

	remaining := maxLoginAttempts - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// ResetLoginAttempts resets the login attempt counter
func (r *RateLimiter) ResetLoginAttempts(ctx context.Context, ip, email string) error {
	return r.client.Del(ctx, loginKey(ip, email)).Err()
}

func loginKey(ip, email string) string {
	return fmt.Sprintf("ratelimit:login:%s:%s", ip, email)
}
