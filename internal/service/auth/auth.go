// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookly-service/internal/domain/user"
	xerrors "bookly-service/internal/pkg/errors"
	"bookly-service/internal/pkg/jwt"
	"bookly-service/internal/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenType = "bearer"

type AuthService struct {
	users      UserStore
	books      BookLister
	codec      *jwt.Codec
	revoker    Revoker
	limiter    LoginLimiter
	notifier   SessionNotifier
	bcryptCost int
	logger     *zap.Logger

	// compared against when the email is unknown so both failure paths
	// cost one bcrypt comparison
	dummyHash []byte
}

func NewAuthService(
	users UserStore,
	books BookLister,
	codec *jwt.Codec,
	revoker Revoker,
	limiter LoginLimiter,
	notifier SessionNotifier,
	bcryptCost int,
	logger *zap.Logger,
) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("bookly-dummy-password"), bcryptCost)

	return &AuthService{
		users:      users,
		books:      books,
		codec:      codec,
		revoker:    revoker,
		limiter:    limiter,
		notifier:   notifier,
		bcryptCost: bcryptCost,
		logger:     logger,
		dummyHash:  dummy,
	}
}

// ========== Registration ==========

// Signup creates an unverified account with the user role
func (s *AuthService) Signup(ctx context.Context, req *user.SignupRequest) (*user.User, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, xerrors.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		UID:          uuid.New(),
		Username:     req.Username,
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         user.RoleUser,
		IsVerified:   false,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("user_uid", u.UID.String()))
	return u, nil
}

// ========== Login / Refresh / Logout ==========

// Login checks credentials and issues an access and a refresh token
func (s *AuthService) Login(ctx context.Context, req *user.LoginRequest) (*user.LoginResponse, error) {
	email := normalizeEmail(req.Email)

	allowed, _, err := s.limiter.CheckLoginAttempt(ctx, req.IPAddress, email)
	if err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", xerrors.ErrAuthInfrastructure, err)
	}
	if !allowed {
		return nil, xerrors.ErrRateLimited
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, xerrors.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return nil, xerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrInvalidCredentials
	}

	if err := s.limiter.ResetLoginAttempts(ctx, req.IPAddress, email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	subject := jwt.UserClaims{Email: u.Email, UserUID: u.UID.String()}

	accessClaims := subject
	accessClaims.Role = u.Role
	accessToken, access, err := s.codec.IssueAccess(accessClaims)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, _, err := s.codec.IssueRefresh(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	metrics.TokensIssued.WithLabelValues(jwt.KindAccess.String()).Inc()
	metrics.TokensIssued.WithLabelValues(jwt.KindRefresh.String()).Inc()
	s.logger.Info("user logged in", zap.String("user_uid", subject.UserUID), zap.String("jti", access.ID))

	return &user.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
		ExpiresIn:    int(s.codec.AccessTTL().Seconds()),
		ExpiresAt:    access.ExpiresAtTime(),
		User:         user.UserInfo{Email: u.Email, UID: subject.UserUID},
	}, nil
}

// RefreshAccessToken issues a new access token for the subject of an
// accepted refresh token. The new token carries the refresh token's user
// claims unchanged.
func (s *AuthService) RefreshAccessToken(ctx context.Context, claims *jwt.Claims) (*user.RefreshResponse, error) {
	if claims == nil || !claims.ExpiresAtTime().After(s.codec.Now()) {
		return nil, fmt.Errorf("%w: refresh token expired", xerrors.ErrInvalidToken)
	}

	token, access, err := s.codec.IssueAccess(claims.User)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	metrics.TokensIssued.WithLabelValues(jwt.KindAccess.String()).Inc()

	return &user.RefreshResponse{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresIn:   int(s.codec.AccessTTL().Seconds()),
		ExpiresAt:   access.ExpiresAtTime(),
	}, nil
}

// Logout revokes the presented access token. The blocklist entry outlives
// the token itself.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil || claims.ID == "" {
		return fmt.Errorf("%w: token has no jti", xerrors.ErrInvalidToken)
	}

	ttl := claims.RemainingLifetime(s.codec.Now())
	if ttl < s.codec.AccessTTL() {
		ttl = s.codec.AccessTTL()
	}

	if err := s.revoker.RevokeFor(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if s.notifier != nil {
		s.notifier.ForceLogout(claims.User.UserUID, claims.ID, "User logged out")
	}

	s.logger.Info("user logged out", zap.String("user_uid", claims.User.UserUID), zap.String("jti", claims.ID))
	return nil
}

// ========== Profile ==========

// Me returns the user together with the books they submitted
func (s *AuthService) Me(ctx context.Context, u *user.User) (*user.UserWithBooks, error) {
	books, err := s.books.ListByUser(ctx, u.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user books: %w", err)
	}
	return &user.UserWithBooks{User: *u, Books: books}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
