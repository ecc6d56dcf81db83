// @title Exam Hub API
// @version 1.0
// @description Past-paper question bank: subjects, topic hierarchy, multiple-choice questions and practice.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "exam-hub/cmd/api/docs"
	"exam-hub/internal/adapter"
	"exam-hub/internal/cache"
	"exam-hub/internal/config"
	"exam-hub/internal/database"
	"exam-hub/internal/domain"
	"exam-hub/internal/handler"
	"exam-hub/internal/logger"
	"exam-hub/internal/middleware"
	"exam-hub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()
		if err != nil {
			// Let the error handler write the response so the logged status is final.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		)
		return nil
	}
}

// connectCache returns nil when no Redis address is configured.
func connectCache(ctx context.Context, cfg config.RedisConfig) (*redis.Client, domain.Cache, error) {
	if cfg.Address == "" {
		return nil, nil, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, adapter.NewRedisCacheAdapter(client), nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	store, err := database.OpenStore(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to open content store", zap.Error(err))
	}

	redisClient, cacheAdapter, err := connectCache(ctx, cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if cacheAdapter == nil {
		appLogger.Info("Redis address not configured; stats caching disabled")
	} else {
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
	}
	stats := service.NewStatsCache(cacheAdapter, cfg.Cache.StatsTTL)

	authService, err := service.NewAuthService(store.Users, cfg.JWT)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}

	services := handler.Services{
		Store:     store,
		Cache:     cacheAdapter,
		Subjects:  service.NewSubjectService(store, stats),
		Topics:    service.NewTopicService(store, stats),
		Questions: service.NewQuestionService(store, stats, cfg.Questions),
		Auth:      authService,
		Users:     service.NewUserService(store.Users),
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)
	handler.RegisterRoutes(app, services)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env), zap.String("store", cfg.DB.Driver))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			appLogger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	if err := store.Close(); err != nil {
		appLogger.Warn("Failed to close content store", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
