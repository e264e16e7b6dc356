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
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/clinic-scheduling-api/api/swagger"
	"github.com/noah-isme/clinic-scheduling-api/internal/handler"
	internalmiddleware "github.com/noah-isme/clinic-scheduling-api/internal/middleware"
	"github.com/noah-isme/clinic-scheduling-api/internal/repository"
	"github.com/noah-isme/clinic-scheduling-api/internal/service"
	"github.com/noah-isme/clinic-scheduling-api/pkg/cache"
	"github.com/noah-isme/clinic-scheduling-api/pkg/config"
	"github.com/noah-isme/clinic-scheduling-api/pkg/database"
	"github.com/noah-isme/clinic-scheduling-api/pkg/export"
	"github.com/noah-isme/clinic-scheduling-api/pkg/jobs"
	"github.com/noah-isme/clinic-scheduling-api/pkg/logger"
	"github.com/noah-isme/clinic-scheduling-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/clinic-scheduling-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/clinic-scheduling-api/pkg/middleware/requestid"
)

// @title Clinic Scheduling API
// @version 1.0.0
// @description Therapist availability, slot computation and booking service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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
		logr.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location, err := cfg.Scheduling.LoadLocation()
	if err != nil {
		return fmt.Errorf("load scheduling location: %w", err)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var ruleCache *service.CacheService
	var cacheRepo *repository.CacheRepository
	if cfg.Redis.Enabled && cfg.Scheduling.RuleCacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, availability cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client)
			defer cacheRepo.Close() //nolint:errcheck
			ruleCache = service.NewCacheService(cacheRepo, metrics, cfg.Scheduling.RuleCacheTTL, logr)
		}
	}

	app := buildApp(cfg, db, ruleCache, metrics, location, logr)
	app.queue.Start(ctx)
	defer app.queue.Stop()

	checks := map[string]handler.ReadinessCheck{
		"postgres": func(ctx context.Context) error { return db.PingContext(ctx) },
	}
	if cacheRepo != nil {
		checks["redis"] = cacheRepo.Ping
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	registerRoutes(r, cfg, app, handler.NewMetricsHandler(metrics, checks))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "location", location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type app struct {
	auth         *service.AuthService
	availability *handler.AvailabilityHandler
	slots        *handler.SlotHandler
	busy         *handler.BusyIntervalHandler
	bookings     *handler.BookingHandler
	feedback     *handler.FeedbackHandler
	exports      *handler.ExportHandler
	queue        *jobs.Queue
}

func buildApp(cfg *config.Config, db *sqlx.DB, ruleCache *service.CacheService, metrics *service.MetricsService, location *time.Location, logr *zap.Logger) *app {
	validate := validator.New()

	therapistRepo := repository.NewTherapistRepository(db)
	ruleRepo := repository.NewAvailabilityRuleRepository(db)
	busyRepo := repository.NewBusyIntervalRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	worker := service.NewNotificationWorker(mailer.New(cfg.Mail), location, logr)
	queue := jobs.NewQueue("notifications", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})
	notifier := service.NewNotificationService(queue, logr)

	generator := service.NewSlotGenerator(service.SlotEngineConfig{
		SessionLength: cfg.Scheduling.SessionLength,
		MinLeadTime:   cfg.Scheduling.MinLeadTime,
		CalendarDays:  cfg.Scheduling.CalendarDays,
	})

	availabilitySvc := service.NewAvailabilityService(ruleRepo, therapistRepo, ruleCache, validate, logr, service.AvailabilityConfig{
		CacheTTL: cfg.Scheduling.RuleCacheTTL,
	})
	slotSvc := service.NewSlotService(availabilitySvc, bookingRepo, busyRepo, generator, location, logr)
	bookingSvc := service.NewBookingService(bookingRepo, therapistRepo, notifier, metrics, validate, logr, service.BookingConfig{
		SessionLength: generator.SessionLength(),
		Location:      location,
	})
	busySvc := service.NewBusyIntervalService(busyRepo, therapistRepo, validate, logr)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, bookingRepo, therapistRepo, validate, logr)
	exportSvc := service.NewExportService(therapistRepo, bookingRepo, location, logr, export.NewCSVExporter(), export.NewPDFExporter())

	return &app{
		auth: service.NewAuthService(logr, service.AuthConfig{
			Secret:   cfg.JWT.Secret,
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
		}),
		availability: handler.NewAvailabilityHandler(availabilitySvc),
		slots:        handler.NewSlotHandler(slotSvc),
		busy:         handler.NewBusyIntervalHandler(busySvc, location),
		bookings:     handler.NewBookingHandler(bookingSvc),
		feedback:     handler.NewFeedbackHandler(feedbackSvc),
		exports:      handler.NewExportHandler(exportSvc, location),
		queue:        queue,
	}
}
