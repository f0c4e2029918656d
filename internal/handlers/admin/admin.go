// internal/handlers/admin/admin.go
package admin

import (
	"context"
	"net/http"

	"bookly-service/internal/domain/user"
	"bookly-service/internal/middleware"
	"bookly-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserManager is the admin slice of the account service.
type UserManager interface {
	ListUsers(ctx context.Context, filters *user.UserListFilters) (*user.UserListResponse, error)
	SetRole(ctx context.Context, uid uuid.UUID, role string) (*user.User, error)
	SetVerified(ctx context.Context, uid uuid.UUID, verified bool) (*user.User, error)
}

type AdminHandler struct {
	users  UserManager
	logger *zap.Logger
}

func NewAdminHandler(users UserManager, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, logger: logger}
}

// ListUsers returns a filtered, paginated list of accounts
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var filters user.UserListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.users.ListUsers(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "users retrieved", result)
}

// UpdateRole changes an account's role. The change applies to the next
// request because roles are read from the database, not the token.
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	uid, ok := middleware.ParseUUIDParam(c, "user_uid")
	if !ok {
		return
	}

	var req user.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	u, err := h.users.SetRole(c.Request.Context(), uid, req.Role)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.logger.Info("user role changed",
		zap.String("user_uid", uid.String()),
		zap.String("role", req.Role),
		zap.String("by", middleware.MustGetUser(c).UID.String()),
	)
	response.Success(c, http.StatusOK, "role updated", u)
}

// UpdateVerified marks an account verified or unverified
func (h *AdminHandler) UpdateVerified(c *gin.Context) {
	uid, ok := middleware.ParseUUIDParam(c, "user_uid")
	if !ok {
		return
	}

	var req user.UpdateVerifiedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	u, err := h.users.SetVerified(c.Request.Context(), uid, *req.IsVerified)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "verification updated", u)
}
