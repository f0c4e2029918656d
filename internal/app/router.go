// internal/app/router.go
package app

import (
	"context"
	"net/http"

	adminHandler "bookly-service/internal/handlers/admin"
	authHandler "bookly-service/internal/handlers/auth"
	bookHandler "bookly-service/internal/handlers/book"
	reviewHandler "bookly-service/internal/handlers/review"
	wsHandler "bookly-service/internal/handlers/websocket"
	"bookly-service/internal/middleware"
	xerrors "bookly-service/internal/pkg/errors"
	"bookly-service/internal/pkg/response"
	authUsecase "bookly-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "1.0.0"

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	AdminHandler   *adminHandler.AdminHandler
	BookHandler    *bookHandler.BookHandler
	ReviewHandler  *reviewHandler.ReviewHandler
	WSHandler      *wsHandler.WebSocketHandler
	AuthMiddleware *middleware.AuthMiddleware

	// Health reports dependency status; nil skips the checks.
	Health   func(ctx context.Context) map[string]string
	Registry *prometheus.Registry
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")
	mw := h.AuthMiddleware

	r.NoRoute(func(c *gin.Context) {
		response.FromError(c, xerrors.ErrNotFound)
	})

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok", "version": version}
		if h.Health != nil {
			deps := h.Health(c.Request.Context())
			body["dependencies"] = deps
			for _, state := range deps {
				if state != "ok" {
					body["status"] = "degraded"
					c.JSON(http.StatusServiceUnavailable, body)
					return
				}
			}
		}
		c.JSON(http.StatusOK, body)
	})

	// ==================== Metrics ====================
	if h.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Registry, promhttp.HandlerOpts{})))
	}

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Auth ====================
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", h.AuthHandler.Signup)
		authRoutes.POST("/login", h.AuthHandler.Login)
		authRoutes.GET("/refresh_token", mw.RefreshToken(), h.AuthHandler.RefreshToken)
		authRoutes.GET("/logout", mw.AccessToken(), h.AuthHandler.Logout)
		authRoutes.GET("/me", append(mw.Authenticated(authUsecase.UserAndAdmin), h.AuthHandler.Me)...)
	}

	// ==================== Books ====================
	books := api.Group("/books")
	books.Use(mw.Authenticated(authUsecase.UserAndAdmin)...)
	{
		books.GET("", h.BookHandler.ListBooks)
		books.POST("", h.BookHandler.CreateBook)
		books.GET("/user/:user_uid", h.BookHandler.ListUserBooks)
		books.GET("/:book_uid", h.BookHandler.GetBook)
		books.PATCH("/:book_uid", h.BookHandler.UpdateBook)
		books.DELETE("/:book_uid", h.BookHandler.DeleteBook)
	}

	// ==================== Reviews ====================
	reviews := api.Group("/reviews")
	{
		reviews.GET("", append(mw.Authenticated(authUsecase.AdminOnly), h.ReviewHandler.ListReviews)...)

		member := reviews.Group("")
		member.Use(mw.Authenticated(authUsecase.UserAndAdmin)...)
		{
			member.GET("/:review_uid", h.ReviewHandler.GetReview)
			member.DELETE("/:review_uid", h.ReviewHandler.DeleteReview)
			member.GET("/book/:book_uid", h.ReviewHandler.ListBookReviews)
			member.POST("/book/:book_uid", h.ReviewHandler.AddReview)
		}
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	admin.Use(mw.Authenticated(authUsecase.AdminOnly)...)
	{
		admin.GET("/users", h.AdminHandler.ListUsers)
		admin.PATCH("/users/:user_uid/role", h.AdminHandler.UpdateRole)
		admin.PATCH("/users/:user_uid/verify", h.AdminHandler.UpdateVerified)
		admin.GET("/ws/stats", h.WSHandler.GetStats)
	}
}
