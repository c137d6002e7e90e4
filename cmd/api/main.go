package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meatlab/lims-api/docs"
	"github.com/meatlab/lims-api/internal/auth"
	"github.com/meatlab/lims-api/internal/config"
	"github.com/meatlab/lims-api/internal/database"
	"github.com/meatlab/lims-api/internal/http/handler"
	"github.com/meatlab/lims-api/internal/http/middleware"
	"github.com/meatlab/lims-api/internal/http/router"
	"github.com/meatlab/lims-api/internal/jobs"
	"github.com/meatlab/lims-api/internal/logger"
	"github.com/meatlab/lims-api/internal/metrics"
	"github.com/meatlab/lims-api/internal/report"
	"github.com/meatlab/lims-api/internal/repository"
	"github.com/meatlab/lims-api/internal/service"
	"github.com/meatlab/lims-api/internal/storage"
	"github.com/meatlab/lims-api/internal/telegram"
	"go.uber.org/zap"
)

// @title Meat Lab LIMS API
// @version 1.0
// @description Laboratory information management for microbiology testing of meat, air, water and hygiene samples
// @termsOfService http://swagger.io/terms/

// @contact.name Lab IT
// @contact.email it@meatlab.example

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token from the auth service

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if host := os.Getenv("SWAGGER_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Development reads secrets from the environment; staging and production from Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		log.Warn("Schema auto-migrated; use the migrate command outside development")
	}

	var archive storage.Storage
	if cfg.Reports.ArchiveEnabled {
		archive, err = storage.NewStorage(ctx, &cfg.Storage, log)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		log.Info("Report archive initialized", zap.String("mode", cfg.Storage.Mode))
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	var sender telegram.Sender = telegram.NopSender{}
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		sender = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.APIEndpoint, cfg.Telegram.RequestTimeoutDuration(), log.Named("telegram"))
	}

	// Repositories
	clientRepo := repository.NewClientRepository(db)
	sampleRepo := repository.NewSampleRepository(db)
	resultRepo := repository.NewTestResultRepository(db)
	reportRepo := repository.NewReportRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	settingsRepo := repository.NewLabSettingsRepository(db)
	codeSeqRepo := repository.NewSampleCodeSequenceRepository(db)

	// Services
	codeService := service.NewSampleCodeService(codeSeqRepo, log)
	settingsService := service.NewLabSettingsService(settingsRepo, cfg.Reports.FallbackLabName, log)
	clientService := service.NewClientService(clientRepo, log)
	sampleService := service.NewSampleService(sampleRepo, clientRepo, profileRepo, codeService, log)
	resultService := service.NewTestResultService(resultRepo, sampleRepo, log)
	profileService := service.NewProfileService(profileRepo, log)
	dashboardService := service.NewDashboardService(sampleRepo, reportRepo, log)

	reportDeps := service.ReportServiceDeps{
		SampleRepo:  sampleRepo,
		ResultRepo:  resultRepo,
		ReportRepo:  reportRepo,
		ProfileRepo: profileRepo,
		ClientRepo:  clientRepo,
		Settings:    settingsService,
		Codes:       codeService,
		Renderer:    report.NewRenderer(log.Named("report")),
		Images:      report.NewHTTPImageSource(cfg.Reports.ImageTimeoutDuration()),
		Archive:     archive,
	}
	if m != nil {
		reportDeps.Observer = m
	}
	reportService := service.NewReportService(reportDeps, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(cfg, profileRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	var healthChecks map[string]handler.HealthChecker
	if archive != nil {
		healthChecks = map[string]handler.HealthChecker{
			"archive": func(ctx context.Context) error { return storage.HealthCheck(ctx, archive) },
		}
	}

	handlers := router.Handlers{
		Health:    handler.NewHealthHandler(db, healthChecks, log),
		Dashboard: handler.NewDashboardHandler(dashboardService, log),
		Client:    handler.NewClientHandler(clientService, log),
		Sample:    handler.NewSampleHandler(sampleService, resultService, reportService, log),
		Report:    handler.NewReportHandler(reportService, log),
		Settings:  handler.NewLabSettingsHandler(settingsService, log),
		Profile:   handler.NewProfileHandler(profileService, log),
	}
	if cfg.Telegram.Enabled {
		botService := service.NewBotService(sampleRepo, resultRepo, reportService, sender, cfg.Telegram.SendDocuments, log.Named("bot"))
		handlers.Telegram = handler.NewTelegramHandler(botService, cfg.Telegram.WebhookSecret, log)
		if cfg.Telegram.WebhookSecret == "" {
			log.Warn("Telegram webhook secret not set; webhook accepts unauthenticated updates")
		}
	}

	rt := router.NewRouter(cfg, log, authMiddleware, rateLimiter, m, handlers)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		var notifier jobs.DigestNotifier
		if cfg.Telegram.AdminChatID != 0 {
			notifier = jobs.NewChatNotifier(sender, cfg.Telegram.AdminChatID)
		}
		var recorder jobs.DigestRecorder
		if m != nil {
			recorder = m
		}
		digest := jobs.NewPendingDigestJob(sampleRepo, notifier, recorder, log.Named("jobs"), cfg.Jobs.PendingAge(), cfg.Jobs.TimeoutDuration())

		if err := scheduler.AddJob(jobs.PendingDigestJobName, cfg.Jobs.PendingDigestSchedule, digest.Run); err != nil {
			log.Error("Failed to register pending digest job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started",
				zap.Strings("jobs", scheduler.GetJobNames()),
				zap.String("cron_expr", cfg.Jobs.PendingDigestSchedule))
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
