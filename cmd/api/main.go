package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/tutortrack/tutortrack-api/api/swagger"
	"github.com/tutortrack/tutortrack-api/internal/handler"
	"github.com/tutortrack/tutortrack-api/internal/middleware"
	"github.com/tutortrack/tutortrack-api/internal/repository"
	"github.com/tutortrack/tutortrack-api/internal/service"
	"github.com/tutortrack/tutortrack-api/pkg/cache"
	"github.com/tutortrack/tutortrack-api/pkg/config"
	"github.com/tutortrack/tutortrack-api/pkg/database"
	"github.com/tutortrack/tutortrack-api/pkg/logger"
	"github.com/tutortrack/tutortrack-api/pkg/mail"
	corsmiddleware "github.com/tutortrack/tutortrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tutortrack/tutortrack-api/pkg/middleware/requestid"
)

// @title TutorTrack API
// @version 1.0.0
// @description REST API for tracking students, class sessions, payments and earnings.
// @BasePath /api
// @schemes http https

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Stats.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, stats caching disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, true)
		}
	}

	studentRepo := repository.NewStudentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	userRepo := repository.NewUserRepository(db)

	var sender mail.Sender
	if cfg.Email.SendgridAPIKey != "" {
		sender = mail.NewSendgridSender(cfg.Email.SendgridAPIKey, cfg.Email.FromName, cfg.Email.FromAddress)
	} else {
		logr.Sugar().Warnw("no sendgrid api key configured, emails go to the log")
		sender = mail.NewConsoleSender(logr)
	}

	billingSvc := service.NewBillingService(studentRepo, sessionRepo, logr)
	statsSvc := service.NewStatsService(studentRepo, sessionRepo, cacheSvc, cfg.Stats.CacheTTL, logr)
	earningsSvc := service.NewEarningsService(studentRepo, sessionRepo, logr)
	studentSvc := service.NewStudentService(studentRepo, statsSvc, nil, logr)
	sessionSvc := service.NewSessionService(sessionRepo, billingSvc, statsSvc, nil, logr)
	notifySvc := service.NewNotificationService(studentRepo, sessionRepo, sender, nil, logr, cfg.Email.SendWorkers, cfg.Email.SendRetries)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		GoogleClientID:     cfg.OAuth.GoogleClientID,
		GoogleClientSecret: cfg.OAuth.GoogleClientSecret,
		GoogleRedirectURL:  cfg.OAuth.GoogleRedirectURL,
	})

	notifySvc.Start(context.Background())
	defer notifySvc.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, billingSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	earningsHandler := handler.NewEarningsHandler(earningsSvc)
	notifyHandler := handler.NewNotifyHandler(notifySvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/google", authHandler.GoogleLogin)
	auth.GET("/google/callback", authHandler.GoogleCallback)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))

	secured.GET("/students", studentHandler.List)
	secured.POST("/students", studentHandler.Create)
	secured.GET("/students/:id", studentHandler.Get)
	secured.PATCH("/students/:id", studentHandler.Update)
	secured.DELETE("/students/:id", studentHandler.Delete)
	secured.POST("/students/:id/recalculate", studentHandler.Recalculate)

	secured.GET("/classes", sessionHandler.List)
	secured.POST("/classes", sessionHandler.Create)
	secured.GET("/classes/student/:studentId", sessionHandler.ListByStudent)
	secured.GET("/classes/:id", sessionHandler.Get)
	secured.PATCH("/classes/:id", sessionHandler.Update)

	secured.GET("/stats", statsHandler.Get)
	secured.GET("/earnings", earningsHandler.Breakdown)
	secured.GET("/earnings/export", earningsHandler.Export)

	secured.POST("/notify/class-summary", notifyHandler.ClassSummary)
	secured.POST("/notify/payment-reminder", notifyHandler.PaymentReminder)
	secured.POST("/notify/custom", notifyHandler.Custom)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
