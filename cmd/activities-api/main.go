package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/justice-digital/activities-api/api/swagger"
	"github.com/justice-digital/activities-api/internal/handler"
	"github.com/justice-digital/activities-api/internal/middleware"
	"github.com/justice-digital/activities-api/internal/models"
	"github.com/justice-digital/activities-api/internal/repository"
	"github.com/justice-digital/activities-api/internal/service"
	"github.com/justice-digital/activities-api/pkg/cache"
	"github.com/justice-digital/activities-api/pkg/config"
	"github.com/justice-digital/activities-api/pkg/database"
	"github.com/justice-digital/activities-api/pkg/export"
	"github.com/justice-digital/activities-api/pkg/logger"
	corsmiddleware "github.com/justice-digital/activities-api/pkg/middleware/cors"
	reqidmiddleware "github.com/justice-digital/activities-api/pkg/middleware/requestid"
	"github.com/justice-digital/activities-api/pkg/storage"
)

// @title Activities API
// @version 1.0.0
// @description Attendance recording and pay decisions for prison activities
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

	if err := models.SetEveningStart(cfg.Attendance.EveningStart); err != nil {
		logr.Sugar().Fatalw("invalid evening start", "value", cfg.Attendance.EveningStart, "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	attendanceRepo := repository.NewAttendanceRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Summary.CacheTTL, logr, cfg.Summary.CacheEnabled && redisClient != nil)
	summarySvc := service.NewSummaryService(attendanceRepo, scheduleRepo, cacheSvc, metricsSvc, cfg.Summary.CacheTTL, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, scheduleRepo, scheduleRepo, summarySvc, metricsSvc, validate, logr)
	exclusionSvc := service.NewExclusionService(allocationRepo, scheduleRepo, validate, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		localStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(summarySvc, export.NewCSVExporter(), export.NewPDFExporter(),
			localStore, signer, service.ExportQueueConfig{
				Workers:    cfg.Exports.WorkerConcurrency,
				MaxRetries: cfg.Exports.WorkerRetries,
			}, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	sessionHandler := handler.NewSessionHandler(attendanceSvc)
	summaryHandler := handler.NewSummaryHandler(summarySvc, exportSvc)
	exclusionHandler := handler.NewExclusionHandler(exclusionSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.GET("/attendance", attendanceHandler.List)
	protected.POST("/attendance/mark", attendanceHandler.Mark)
	protected.POST("/attendance/:id/reset", attendanceHandler.Reset)
	protected.GET("/attendance-reasons", attendanceHandler.Reasons)
	protected.POST("/sessions/:id/cancel", sessionHandler.Cancel)
	protected.POST("/sessions/:id/uncancel", sessionHandler.Uncancel)
	protected.GET("/summary/daily", summaryHandler.Daily)
	protected.POST("/summary/exports", summaryHandler.RequestExport)
	protected.GET("/summary/exports/:id", summaryHandler.ExportStatus)
	protected.POST("/allocations/:id/exclusions/preview", exclusionHandler.Preview)
	protected.PUT("/allocations/:id/exclusions", exclusionHandler.Update)

	// Download authenticates via its signed token rather than a JWT so links
	// can be handed to other systems.
	api.GET("/summary/exports/download", summaryHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
