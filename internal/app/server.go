// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bookly-service/internal/config"
	"bookly-service/internal/db"
	adminHandler "bookly-service/internal/handlers/admin"
	authHandler "bookly-service/internal/handlers/auth"
	bookHandler "bookly-service/internal/handlers/book"
	reviewHandler "bookly-service/internal/handlers/review"
	wsHandler "bookly-service/internal/handlers/websocket"
	"bookly-service/internal/middleware"
	"bookly-service/internal/pkg/jwt"
	"bookly-service/internal/pkg/metrics"
	"bookly-service/internal/pkg/session"
	"bookly-service/internal/repository/postgres"
	authUsecase "bookly-service/internal/service/auth"
	bookUsecase "bookly-service/internal/service/book"
	reviewUsecase "bookly-service/internal/service/review"
	"bookly-service/internal/websocket"
	wsHandlers "bookly-service/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	httpServer *http.Server
	pool       *pgxpool.Pool
	redis      redis.UniversalClient
	stopHub    context.CancelFunc
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	gin.SetMode(cfg.GinMode)
	return &Server{cfg: cfg, engine: gin.New(), logger: logger}
}

// Start connects the backing stores, wires the application and serves HTTP
// until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool
	s.logger.Info("connected to postgres")

	// ----- Redis -----
	redisClient, err := db.NewRedis(db.RedisConfig{
		ClusterMode: s.cfg.RedisCluster,
		Addresses:   s.cfg.RedisAddrs,
		Password:    s.cfg.RedisPass,
		DB:          s.cfg.RedisDB,
		PoolSize:    10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	s.redis = redisClient
	s.logger.Info("connected to redis", zap.Strings("addrs", s.cfg.RedisAddrs))

	// ----- Token codec -----
	codec, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build token codec: %w", err)
	}
	s.logger.Info("token codec ready",
		zap.String("algorithm", codec.Algorithm()),
		zap.Duration("access_ttl", codec.AccessTTL()),
		zap.Duration("refresh_ttl", codec.RefreshTTL()),
	)

	// ----- Metrics -----
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	// ----- Blocklist & Rate Limiter -----
	blocklist := session.NewBlocklist(redisClient, codec.AccessTTL())
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	userRepo := postgres.NewUserRepository(pool)
	bookRepo := postgres.NewBookRepository(dbWrapper)
	reviewRepo := postgres.NewReviewRepository(pool)

	// ----- Auth core -----
	guard := authUsecase.NewGuard(codec, blocklist, s.logger.Named("guard"))
	resolver := authUsecase.NewIdentityResolver(userRepo)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(guard, resolver, s.logger.Named("ws"))
	hubCtx, stopHub := context.WithCancel(context.Background())
	s.stopHub = stopHub
	go hub.Run(hubCtx)

	// ----- Services (Usecases) -----
	authService := authUsecase.NewAuthService(
		userRepo,
		bookRepo,
		codec,
		blocklist,
		rateLimiter,
		hub,
		s.cfg.BcryptCost,
		s.logger,
	)
	bookService := bookUsecase.NewBookService(bookRepo, s.logger)
	reviewService := reviewUsecase.NewReviewService(reviewRepo, bookRepo, hub, s.logger)

	hub.RegisterHandler(wsHandlers.NewReviewHandler(reviewService))

	// ----- Bootstrap admin -----
	if s.cfg.AdminEmail != "" {
		bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := authService.EnsureAdmin(bootCtx, s.cfg.AdminEmail, s.cfg.AdminPassword)
		cancel()
		if err != nil {
			s.logger.Error("failed to ensure admin account", zap.Error(err))
		}
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(s.logger),
		middleware.LoggingMiddleware(s.logger),
		middleware.TrustedHostsMiddleware(s.cfg.TrustedHosts),
		middleware.CORSMiddleware(s.cfg.CORSAllowedOrigins),
	)

	// ----- Router -----
	SetupRouter(s.engine, &Handlers{
		AuthHandler:    authHandler.NewAuthHandler(authService, s.logger),
		AdminHandler:   adminHandler.NewAdminHandler(authService, s.logger),
		BookHandler:    bookHandler.NewBookHandler(bookService),
		ReviewHandler:  reviewHandler.NewReviewHandler(reviewService),
		WSHandler:      wsHandler.NewWebSocketHandler(hub, s.cfg.CORSAllowedOrigins, s.logger),
		AuthMiddleware: middleware.NewAuthMiddleware(guard, resolver, s.logger),
		Health:         s.health,
		Registry:       registry,
	})

	// ----- Start HTTP -----
	s.httpServer = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, drains in-flight ones and releases
// the backing stores.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if s.stopHub != nil {
		s.stopHub()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return errors.Join(errs...)
}

// health reports whether both backing stores answer.
func (s *Server) health(ctx context.Context) map[string]string {
	status := map[string]string{"postgres": "ok", "redis": "ok"}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		status["postgres"] = "unavailable"
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		status["redis"] = "unavailable"
	}
	return status
}
