// internal/middleware/recovery_middleware.go
package middleware

import (
	xerrors "bookly-service/internal/pkg/errors"
	"bookly-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					zap.Any("error", rec),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				response.FromError(c, xerrors.ErrInternal)
			}
		}()
		c.Next()
	}
}
