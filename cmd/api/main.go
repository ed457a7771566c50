package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "supplydesk/api/swagger" // swagger docs
	"supplydesk/internal/config"
	"supplydesk/internal/database"
	"supplydesk/internal/handler"
	"supplydesk/internal/logger"
	"supplydesk/internal/metrics"
	"supplydesk/internal/middleware"
	"supplydesk/internal/repository"
	"supplydesk/internal/service"
	"supplydesk/internal/session"
	"supplydesk/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Supplydesk API
// @version         1.0
// @description     Office supplies inventory and request tracking.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("configs/.env")
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger.Setup(cfg.LogLevel)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Info("Connected to PostgreSQL successfully.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, closeSessions := newSessionStore(ctx, cfg)
	defer closeSessions()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(cfg.CORSOrigins)
	go wsHub.Run(ctx)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	itemRepo := repository.NewItemRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)

	inventoryService := service.NewInventoryService(itemRepo, movementRepo, auditRepo, txManager, wsHub)
	requestService := service.NewRequestService(requestRepo, auditRepo, txManager, wsHub)
	approvalService := service.NewApprovalService(requestRepo, itemRepo, movementRepo, auditRepo, txManager, wsHub)
	auditService := service.NewAuditService(auditRepo)
	statisticsService := service.NewStatisticsService(statsRepo, itemRepo, cfg.LowStockThreshold)
	authService := service.NewAuthService(sessions, cfg.JWTSecret, cfg.AdminPasswordHash)

	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	requestHandler := handler.NewRequestHandler(requestService, approvalService)
	auditHandler := handler.NewAuditHandler(auditService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	authHandler := handler.NewAuthHandler(authService)

	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger(), metrics.PrometheusMiddleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{handler.StockAdjustmentHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	requireAdmin := middleware.RequireAdmin(authService)
	router.GET("/ws", requireAdmin, func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	api := router.Group("/api")
	authHandler.RegisterRoutes(api, requireAdmin)
	inventoryHandler.RegisterRoutes(api, requireAdmin)
	requestHandler.RegisterRoutes(api, requireAdmin)
	auditHandler.RegisterRoutes(api, requireAdmin)
	statisticsHandler.RegisterRoutes(api, requireAdmin)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newSessionStore connects to Redis when REDIS_ADDR is set and falls back to
// an in-process store otherwise.
func newSessionStore(ctx context.Context, cfg config.Config) (session.Store, func()) {
	if cfg.RedisAddr == "" {
		if cfg.Release() {
			log.Warn("REDIS_ADDR not set, admin sessions are kept in memory")
		}
		return session.NewMemoryStore(cfg.SessionTTL), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	log.WithField("addr", cfg.RedisAddr).Info("Connected to Redis")

	return session.NewRedisStore(rdb, cfg.SessionTTL), func() { _ = rdb.Close() }
}
