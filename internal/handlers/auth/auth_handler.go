// internal/handlers/auth/auth_handler.go
package auth

import (
	"context"
	"net/http"

	"bookly-service/internal/domain/user"
	"bookly-service/internal/middleware"
	xerrors "bookly-service/internal/pkg/errors"
	"bookly-service/internal/pkg/jwt"
	"bookly-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service is the account use-case surface the handlers call.
type Service interface {
	Signup(ctx context.Context, req *user.SignupRequest) (*user.User, error)
	Login(ctx context.Context, req *user.LoginRequest) (*user.LoginResponse, error)
	RefreshAccessToken(ctx context.Context, claims *jwt.Claims) (*user.RefreshResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	Me(ctx context.Context, u *user.User) (*user.UserWithBooks, error)
}

type AuthHandler struct {
	authService Service
	logger      *zap.Logger
}

func NewAuthHandler(authService Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ========== Registration ==========

// Signup creates an unverified account (public endpoint)
func (h *AuthHandler) Signup(c *gin.Context) {
	var req user.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	u, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		if !xerrors.Is(err, xerrors.ErrUserAlreadyExists) {
			h.logger.Error("signup failed", zap.String("email", req.Email), zap.Error(err))
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "account created", u)
}

// ========== Login ==========

// Login exchanges credentials for an access and refresh token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	req.IPAddress = c.ClientIP()

	loginResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("email", req.Email),
			zap.String("ip", req.IPAddress),
			zap.Error(err),
		)
		response.FromError(c, err)
		return
	}

	h.logger.Info("user logged in",
		zap.String("user_uid", loginResp.User.UID),
		zap.String("email", loginResp.User.Email),
	)

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// ========== Tokens ==========

// RefreshToken issues a new access token (requires a refresh token)
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	claims := middleware.MustGetClaims(c)

	refreshed, err := h.authService.RefreshAccessToken(c.Request.Context(), claims)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "access token refreshed", refreshed)
}

// Logout revokes the presented access token (requires auth)
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.MustGetClaims(c)

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.logger.Error("logout failed",
			zap.String("user_uid", claims.User.UserUID),
			zap.String("jti", claims.ID),
			zap.Error(err),
		)
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "logged out successfully", nil)
}

// ========== Profile ==========

// Me returns the current user together with the books they submitted
func (h *AuthHandler) Me(c *gin.Context) {
	u := middleware.MustGetUser(c)

	me, err := h.authService.Me(c.Request.Context(), u)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "current user", me)
}
