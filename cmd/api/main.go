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
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/mbu-admin-api/api/swagger"
	"github.com/noah-isme/mbu-admin-api/internal/handler"
	"github.com/noah-isme/mbu-admin-api/internal/repository"
	"github.com/noah-isme/mbu-admin-api/internal/service"
	"github.com/noah-isme/mbu-admin-api/pkg/cache"
	"github.com/noah-isme/mbu-admin-api/pkg/config"
	"github.com/noah-isme/mbu-admin-api/pkg/database"
	"github.com/noah-isme/mbu-admin-api/pkg/jobs"
	"github.com/noah-isme/mbu-admin-api/pkg/logger"
	"github.com/noah-isme/mbu-admin-api/pkg/mailer"
	"github.com/noah-isme/mbu-admin-api/pkg/validation"
)

// @title MBU Admin API
// @version 1.0.0
// @description Registration and administration backend for MBU Islamic School
// @BasePath /api/v1
// @schemes http https
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if err := database.Seed(ctx, db, cfg.AdminSeed, logr); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, "mbu:")
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	validate := validation.New()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr.Named("cache"), redisClient != nil)

	notifier := mailer.Notifier(mailer.NewLogMailer(logr.Named("mailer")))
	if cfg.SMTP.Host != "" {
		notifier = mailer.NewSMTPMailer(cfg.SMTP)
	}
	notifications := service.NewNotificationService(notifier, service.NotificationConfig{
		SchoolName: cfg.School.Name,
		SchoolCode: cfg.School.Code,
		AdminEmail: cfg.SMTP.AdminNotify,
		Queue: jobs.QueueConfig{
			Workers:    cfg.Notification.Workers,
			BufferSize: cfg.Notification.BufferSize,
			MaxRetries: cfg.Notification.MaxRetries,
			RetryDelay: cfg.Notification.RetryDelay,
			Timeout:    cfg.Notification.Timeout,
		},
	}, metrics, logr.Named("notifications"))
	if err := notifications.Start(context.Background()); err != nil {
		return fmt.Errorf("start notifications: %w", err)
	}

	students := repository.NewStudentRepository(db)
	sections := repository.NewSectionRepository(db)
	contacts := repository.NewContactRepository(db)
	admins := repository.NewAdminRepository(db)
	payments := repository.NewPaymentRepository(db)

	authSvc := service.NewAuthService(admins, validate, logr.Named("auth"), service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	registrationSvc := service.NewRegistrationService(service.RegistrationServiceParams{
		Repo:       students,
		Notifier:   notifications,
		Cache:      cacheSvc,
		Metrics:    metrics,
		Validator:  validate,
		SchoolCode: cfg.School.Code,
		Logger:     logr.Named("registration"),
	})
	studentSvc := service.NewStudentService(students, notifications, cacheSvc, logr.Named("students"))
	sectionSvc := service.NewSectionService(sections, cacheSvc, validate, logr.Named("sections"))
	contactSvc := service.NewContactService(contacts, notifications, cacheSvc, validate, logr.Named("contacts"))
	paymentSvc := service.NewPaymentService(payments, students, cacheSvc, validate, logr.Named("payments"))
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students:   students,
		Sections:   sections,
		Contacts:   contacts,
		Cache:      cacheSvc,
		Metrics:    metrics,
		CacheTTL:   cfg.Dashboard.CacheTTL,
		SchoolCode: cfg.School.Code,
		Logger:     logr.Named("dashboard"),
	})
	exportSvc := service.NewExportService(students, cfg.School.Code, cfg.School.Name, logr.Named("export")).
		WithPDFFont(cfg.Export.PDFFont)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metrics,
		Tokens:         authSvc,
	}, handler.Handlers{
		Registration: handler.NewRegistrationHandler(registrationSvc),
		Students:     handler.NewStudentHandler(studentSvc, cfg.School.Code),
		Payments:     handler.NewPaymentHandler(paymentSvc, cfg.School.Code),
		Sections:     handler.NewSectionHandler(sectionSvc),
		Contacts:     handler.NewContactHandler(contactSvc),
		Auth:         handler.NewAuthHandler(authSvc),
		Dashboard:    handler.NewDashboardHandler(dashboardSvc),
		Export:       handler.NewExportHandler(exportSvc),
		Metrics:      handler.NewMetricsHandler(metrics, readinessChecks(db, cacheRepo, redisClient != nil)),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown", zap.Error(err))
	}
	notifications.Stop(shutdownCtx)
	return nil
}

func readinessChecks(db *sqlx.DB, cacheRepo *repository.CacheRepository, cacheEnabled bool) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
	if cacheEnabled {
		checks["cache"] = cacheRepo.Ping
	}
	return checks
}
