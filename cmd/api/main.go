package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/kursplatform/kurs-api/api/swagger"
	"github.com/kursplatform/kurs-api/internal/database"
	"github.com/kursplatform/kurs-api/internal/handler"
	"github.com/kursplatform/kurs-api/internal/middleware"
	"github.com/kursplatform/kurs-api/internal/repository"
	"github.com/kursplatform/kurs-api/internal/service"
	"github.com/kursplatform/kurs-api/pkg/cache"
	"github.com/kursplatform/kurs-api/pkg/config"
	dbpkg "github.com/kursplatform/kurs-api/pkg/database"
	"github.com/kursplatform/kurs-api/pkg/export"
	"github.com/kursplatform/kurs-api/pkg/logger"
	corsmiddleware "github.com/kursplatform/kurs-api/pkg/middleware/cors"
	reqidmiddleware "github.com/kursplatform/kurs-api/pkg/middleware/requestid"
	"github.com/kursplatform/kurs-api/pkg/storage"
)

// @title Kurs Platform API
// @version 1.0.0
// @description Course platform backend: catalog, enrollments, messaging and admin back-office
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := dbpkg.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.SeedAdmin(seedCtx, userRepo, cfg.Seed, logr); err != nil {
		cancelSeed()
		logr.Fatal("failed to seed admin account", zap.Error(err))
	}
	cancelSeed()

	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Catalog.CacheTTL, logr, redisClient != nil)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userService := service.NewUserService(userRepo, validate, logr)
	categoryService := service.NewCategoryService(categoryRepo, cacheService, validate, logr)
	courseService := service.NewCourseService(courseRepo, categoryRepo, userRepo, enrollmentRepo, userRepo, cacheService, cfg.Catalog.CacheTTL, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, validate, logr)
	messageService := service.NewMessageService(messageRepo, userRepo, validate, logr)
	statsService := service.NewStatsService(statsRepo, cacheService, cfg.Stats.CacheTTL, logr)

	archive, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Fatal("failed to prepare report archive", zap.Error(err))
	}
	if deleted, err := archive.CleanupOlderThan(cfg.Export.Retention); err != nil {
		logr.Warn("failed to clean up archived reports", zap.Error(err))
	} else if len(deleted) > 0 {
		logr.Info("archived reports cleaned up", zap.Int("count", len(deleted)))
	}

	exportService := service.NewExportService(userRepo, enrollmentRepo, export.NewCSVExporter(), export.NewPDFExporter(), archive, logr)

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		User:       handler.NewUserHandler(userService),
		Category:   handler.NewCategoryHandler(categoryService),
		Course:     handler.NewCourseHandler(courseService),
		Enrollment: handler.NewEnrollmentHandler(enrollmentService),
		Message:    handler.NewMessageHandler(messageService),
		Stats:      handler.NewStatsHandler(statsService),
		Report:     handler.NewReportHandler(exportService),
		Metrics:    handler.NewMetricsHandler(metricsService, db),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	handler.RegisterRoutes(r, cfg.APIPrefix, authService, handlers)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
