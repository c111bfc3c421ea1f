package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/bunkmate/bunkmate-api/api/swagger"
	"github.com/bunkmate/bunkmate-api/internal/handler"
	"github.com/bunkmate/bunkmate-api/internal/mailer"
	"github.com/bunkmate/bunkmate-api/internal/middleware"
	"github.com/bunkmate/bunkmate-api/internal/repository"
	"github.com/bunkmate/bunkmate-api/internal/service"
	"github.com/bunkmate/bunkmate-api/pkg/cache"
	"github.com/bunkmate/bunkmate-api/pkg/config"
	"github.com/bunkmate/bunkmate-api/pkg/database"
	"github.com/bunkmate/bunkmate-api/pkg/jobs"
	"github.com/bunkmate/bunkmate-api/pkg/logger"
	corsmiddleware "github.com/bunkmate/bunkmate-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bunkmate/bunkmate-api/pkg/middleware/requestid"
)

// @title Bunkmate API
// @version 1.0.0
// @description Attendance tracking, bunk planning and alerts for students
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is an accelerator, not a dependency. The leaderboard just
	// recomputes on every request when it is missing.
	metricsSvc := service.NewMetricsService()
	var cacheSvc *service.CacheService
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Leaderboard.CacheTTL, logr, false)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Leaderboard.CacheTTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)

	var delivery mailer.Mailer
	if cfg.Email.Enabled && cfg.Email.SendgridKey != "" {
		delivery = mailer.NewSendgrid(cfg.Email)
	} else {
		delivery = mailer.NewLogMailer(logr)
	}

	mailQueue := jobs.NewQueue("mail", mailer.QueueHandler(delivery), jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})

	validate := validator.New()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:             cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "bunkmate",
	})

	alertSvc := service.NewAlertService(service.AlertServiceParams{
		Users:     userRepo,
		Queue:     mailQueue,
		Metrics:   metricsSvc,
		Logger:    logr,
		Threshold: cfg.Attendance.Threshold,
	})

	subjectSvc := service.NewSubjectService(service.SubjectServiceParams{
		Repo:      subjectRepo,
		Alerts:    alertSvc,
		Cache:     cacheSvc,
		Validator: validate,
		Logger:    logr,
	})

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Subjects:  subjectRepo,
		Logger:    logr,
		Threshold: cfg.Attendance.Threshold,
		Warning:   cfg.Attendance.WarningThreshold,
	})

	leaderboardSvc := service.NewLeaderboardService(service.LeaderboardServiceParams{
		Users:    userRepo,
		Subjects: subjectRepo,
		Cache:    cacheSvc,
		TTL:      cfg.Leaderboard.CacheTTL,
		Logger:   logr,
	})

	reportSvc := service.NewReportService(service.ReportServiceParams{
		Users:     userRepo,
		Subjects:  subjectRepo,
		Mailer:    delivery,
		Metrics:   metricsSvc,
		Logger:    logr,
		Threshold: cfg.Attendance.Threshold,
		Warning:   cfg.Attendance.WarningThreshold,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailQueue.Start(ctx)
	defer mailQueue.Stop()

	scheduler := service.NewReportScheduler(reportSvc, cfg.Reports.Interval, logr)
	if cfg.Reports.Enabled {
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/signup", authHandler.Signup)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)

		api.GET("/leaderboard", leaderboardHandler.Leaderboard)

		authed := api.Group("", middleware.JWT(authSvc))
		{
			authed.GET("/me", authHandler.Profile)
			authed.PUT("/me", authHandler.UpdateProfile)

			authed.GET("/subjects", subjectHandler.List)
			authed.POST("/subjects", subjectHandler.Create)
			authed.PATCH("/subjects/:id", subjectHandler.Update)
			authed.DELETE("/subjects/:id", subjectHandler.Delete)

			authed.GET("/dashboard", dashboardHandler.Overview)
			authed.GET("/simulator/predict", dashboardHandler.Predict)

			authed.GET("/reports/weekly", reportHandler.Weekly)
			authed.POST("/reports/weekly/run", reportHandler.Run)
			authed.GET("/reports/weekly/export", reportHandler.Export)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
