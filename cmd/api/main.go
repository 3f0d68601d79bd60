package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-lms-api/api/swagger"
	"github.com/noah-isme/campus-lms-api/internal/handler"
	"github.com/noah-isme/campus-lms-api/internal/notice"
	"github.com/noah-isme/campus-lms-api/internal/repository"
	"github.com/noah-isme/campus-lms-api/internal/service"
	"github.com/noah-isme/campus-lms-api/pkg/cache"
	"github.com/noah-isme/campus-lms-api/pkg/config"
	"github.com/noah-isme/campus-lms-api/pkg/database"
	"github.com/noah-isme/campus-lms-api/pkg/database/migrations"
	"github.com/noah-isme/campus-lms-api/pkg/jobs"
	"github.com/noah-isme/campus-lms-api/pkg/logger"
	"github.com/noah-isme/campus-lms-api/pkg/webhook"
)

// @title Campus LMS API
// @version 1.0.0
// @description Mentor change requests, daily submissions and attendance reports
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type poster interface {
	Post(ctx context.Context, msg webhook.Message) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.Run(ctx, db.DB, logger.Component(logr, "migrations")); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheRepo service.CacheRepository
	var cachePing handler.Pinger
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, mentor capacity served uncached", zap.Error(err))
		} else {
			redisRepo := repository.NewCacheRepository(client, logr)
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
			cachePing = redisRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Mentors.CacheTTL, logger.Component(logr, "cache"))

	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewMentorRequestRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	bugRepo := repository.NewBugReportRepository(db)
	assignmentRepo := repository.NewAssociateAssignmentRepository(db)

	var webhookClient poster
	if cfg.Webhook.URL != "" {
		webhookClient = webhook.New(cfg.Webhook.URL, cfg.Webhook.Timeout, webhook.WithUsername(cfg.Webhook.Username))
	}

	authSvc := service.NewAuthService(userRepo, validate, logger.Component(logr, "auth"), service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})

	capacitySvc := service.NewMentorCapacityService(userRepo, cacheSvc, service.MentorCapacityConfig{
		DefaultMaxMentees: cfg.Mentors.DefaultMaxMentees,
		CacheTTL:          cfg.Mentors.CacheTTL,
		Batch:             cfg.Mentors.LoadMoreBatch,
	}, logger.Component(logr, "mentor_capacity"))

	requestOpts := []service.MentorRequestServiceOption{
		service.WithRequestMetrics(metrics),
		service.WithCapacityInvalidator(capacitySvc),
	}
	var notifications *jobs.Queue
	if cfg.Notifications.Enabled && webhookClient != nil {
		notifier := service.NewNotificationService(webhookClient, metrics, logger.Component(logr, "notifications"))
		notifications = jobs.NewQueue("mentor-request-notifications", notifier.Handle, jobs.QueueConfig{
			Workers:    cfg.Notifications.Workers,
			MaxRetries: cfg.Notifications.MaxRetries,
			RetryDelay: cfg.Notifications.RetryDelay,
			JobTimeout: cfg.Webhook.Timeout,
			Logger:     logr,
		})
		notifier.Attach(notifications)
		metrics.WatchQueue("mentor_request_notifications", notifications)
		notifications.Start(ctx)
		requestOpts = append(requestOpts, service.WithRequestEvents(notifier))
	}
	requestSvc := service.NewMentorRequestService(requestRepo, userRepo, userRepo, logger.Component(logr, "mentor_requests"), requestOpts...)

	reportSvc := service.NewAttendanceReportService(userRepo, submissionRepo, webhookClient, metrics, service.AttendanceReportConfig{
		UTCOffset:       cfg.Reporter.UTCOffset,
		AbsentNameLimit: cfg.Reporter.AbsentNameLimit,
	}, logger.Component(logr, "attendance"))
	submissionSvc := service.NewSubmissionService(submissionRepo, userRepo, validate, reportSvc.Location(), logger.Component(logr, "submissions"))
	exportSvc := service.NewExportService(reportSvc, nil, nil, logger.Component(logr, "export"))
	bugSvc := service.NewBugReportService(bugRepo, userRepo, validate, logger.Component(logr, "bug_reports"))
	assignmentSvc := service.NewAssignmentService(assignmentRepo, userRepo, userRepo, validate, logger.Component(logr, "assignments"))

	registry := notice.NewRegistry(notice.WithTTL(cfg.Notices.SuccessTTL, cfg.Notices.ErrorTTL))
	defer registry.Close()

	router := newRouter(handlers{
		auth:          handler.NewAuthHandler(authSvc),
		requests:      handler.NewMentorRequestHandler(requestSvc, registry),
		capacity:      handler.NewMentorCapacityHandler(capacitySvc),
		notices:       handler.NewNoticeHandler(registry),
		submissions:   handler.NewSubmissionHandler(submissionSvc),
		bugReports:    handler.NewBugReportHandler(bugSvc),
		assignments:   handler.NewAssignmentHandler(assignmentSvc),
		reports:       handler.NewReportHandler(exportSvc),
		observability: handler.NewMetricsHandler(metrics, db).WithOptionalCheck("cache", cachePing),
	}, routerOptions{
		apiPrefix:      cfg.APIPrefix,
		allowedOrigins: cfg.CORS.AllowedOrigins,
		enableDocs:     cfg.Env != config.EnvProduction,
		metrics:        metrics,
		tokens:         authSvc,
		logger:         logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if notifications != nil {
		notifications.Stop()
	}
}
