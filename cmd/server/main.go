package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tushare/internal/config"
	"tushare/internal/handlers"
	"tushare/internal/middleware"
	"tushare/internal/repositories/mongodb"
	"tushare/internal/services"
	"tushare/pkg/cache"
	"tushare/pkg/database"
	"tushare/pkg/logger"
	"tushare/pkg/storage"
	"tushare/pkg/websocket"
	"tushare/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:      cfg.App.LogLevel,
		Format:     cfg.App.LogFormat,
		Output:     "stdout",
		TimeFormat: time.RFC3339,
		AppName:    cfg.App.Name,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.Config{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    uint64(cfg.Database.MaxPoolSize),
		MinPoolSize:    uint64(cfg.Database.MinPoolSize),
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to mongodb: %v", err)
	}

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	storageProvider, err := newStorageProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Services
	cacheService := services.NewCacheService(redisCache)
	blacklist := services.NewTokenBlacklist(cacheService, cfg.Security.JWTRefreshTokenTTL)
	emailService := services.NewEmailService(cfg.SMTP, appLogger)
	defer emailService.Close()

	// Repositories
	userRepo := mongodb.NewUserRepository(db.Database, cacheService)
	rideRepo := mongodb.NewRideRepository(db.Database)
	bookingRepo := mongodb.NewBookingRepository(db.Database)
	messageRepo := mongodb.NewMessageRepository(db.Database)

	authService := services.NewAuthService(userRepo, blacklist, emailService, cfg, appLogger)
	userService := services.NewUserService(userRepo, storageProvider, appLogger)
	rideService := services.NewRideService(rideRepo, bookingRepo, userRepo, db, appLogger)

	wsHandler := websocket.NewHandler(rideService)
	messageService := services.NewMessageService(messageRepo, userRepo, rideRepo, bookingRepo, rideService, wsHandler, appLogger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, userService, appLogger)
	userHandler := handlers.NewUserHandler(userService, appLogger)
	rideHandler := handlers.NewRideHandler(rideService, appLogger)
	messageHandler := handlers.NewMessageHandler(messageService, appLogger)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(appLogger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	authGate := middleware.NewAuthGate(cfg.Security.JWTSecret, blacklist)
	router.Use(authGate.Handler())

	root := router.Group("")
	{
		routes.SetupAuthRoutes(root, authHandler)
		routes.SetupUserRoutes(root, userHandler)
		routes.SetupRideRoutes(root, rideHandler, userRepo)
		routes.SetupMessageRoutes(root, messageHandler, wsHandler, userRepo)
	}

	// Profile images served straight from local storage.
	if cfg.Storage.Provider == "local" {
		router.Static("/media/dps", cfg.Storage.Local.BasePath)
	}

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "healthy"
		code := http.StatusOK
		if err := db.Ping(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else if err := redisCache.Ping(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":  status,
			"version": cfg.App.Version,
		})
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}

	if err := db.Close(ctx); err != nil {
		appLogger.WithError(err).Error("Failed to close mongodb connection")
	}
	if err := redisCache.Close(); err != nil {
		appLogger.WithError(err).Error("Failed to close redis connection")
	}
}

func newStorageProvider(cfg *config.Config) (storage.Provider, error) {
	switch cfg.Storage.Provider {
	case "s3", "aws":
		return storage.NewAWSS3Storage(cfg.Storage.AWS.Region, cfg.Storage.AWS.Bucket, cfg.Storage.AWS.CDNDomain)
	default:
		return storage.NewLocalStorage(cfg.Storage.Local.BasePath, cfg.Storage.Local.BaseURL)
	}
}
