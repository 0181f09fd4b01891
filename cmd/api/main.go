package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/straye-as/sales-assistant-api/docs"
	"github.com/straye-as/sales-assistant-api/internal/auth"
	"github.com/straye-as/sales-assistant-api/internal/config"
	"github.com/straye-as/sales-assistant-api/internal/database"
	"github.com/straye-as/sales-assistant-api/internal/http/handler"
	"github.com/straye-as/sales-assistant-api/internal/http/middleware"
	"github.com/straye-as/sales-assistant-api/internal/http/router"
	"github.com/straye-as/sales-assistant-api/internal/jobs"
	"github.com/straye-as/sales-assistant-api/internal/logger"
	"github.com/straye-as/sales-assistant-api/internal/messaging"
	"github.com/straye-as/sales-assistant-api/internal/repository"
	"github.com/straye-as/sales-assistant-api/internal/service"
	"go.uber.org/zap"
)

// @title Straye Sales Assistant API
// @version 1.0
// @description Purchase-pattern intelligence and proactive outreach for WhatsApp shops
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@straye.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token scoped to one tenant

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
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

	if basicCfg.App.Environment == "development" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In staging/production secrets may come from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Repositories
	tenantRepo := repository.NewTenantRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	patternRepo := repository.NewPatternRepository(db)
	messageRepo := repository.NewProactiveMessageRepository(db)
	alertRepo := repository.NewManagerAlertRepository(db)
	runRepo := repository.NewIntelligenceRunRepository(db)

	// Outbound messaging
	senders := messaging.NewRegistry()
	senders.Register(messaging.ProviderLog, messaging.NewLogSender(log))
	senders.Register(messaging.ProviderWhatsApp, messaging.NewWhatsAppClient(&cfg.Messaging.WhatsApp))
	sender, err := senders.Get(cfg.Messaging.Provider)
	if err != nil {
		return fmt.Errorf("failed to select messaging provider: %w", err)
	}
	log.Info("Messaging provider selected",
		zap.String("provider", cfg.Messaging.Provider),
		zap.Strings("available", senders.Names()),
	)

	// Services
	intel := cfg.Intelligence
	frequencyService := service.NewFrequencyService(customerRepo, orderRepo, nil, log)
	affinityService := service.NewAffinityService(customerRepo, orderRepo, log)
	patternService := service.NewPatternService(customerRepo, orderRepo, patternRepo, nil, log)
	alertService := service.NewManagerAlertService(tenantRepo, alertRepo, sender, nil, log)
	anomalyService := service.NewAnomalyService(
		customerRepo,
		orderRepo,
		patternRepo,
		conversationRepo,
		alertService,
		time.Duration(intel.InquirySuppressionHours)*time.Hour,
		nil,
		log,
	)
	outreachService := service.NewOutreachService(service.OutreachDeps{
		Tenants:       tenantRepo,
		Customers:     customerRepo,
		Conversations: conversationRepo,
		Messages:      messageRepo,
		Runs:          runRepo,
		Patterns:      patternService,
		Products:      affinityService,
		Detector:      anomalyService,
		Alerter:       alertService,
		Sender:        sender,
	}, outreachConfig(&intel), log)

	// Nightly pass run lock, shared across replicas when Redis is configured
	var runLock jobs.RunLock = jobs.NewLocalLock(nil)
	if cfg.Redis.Enabled {
		redisClient := jobs.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, nightly run lock may fail until it recovers",
				zap.String("addr", cfg.Redis.Addr),
				zap.Error(err),
			)
		}
		runLock = jobs.NewRedisLock(redisClient)
		log.Info("Using Redis run lock", zap.String("addr", cfg.Redis.Addr))
	}
	intelligenceJob := jobs.NewIntelligenceJob(outreachService, runLock, intel.LockKey, intel.LockTTL(), intel.Timeout(), log)

	// Middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	rt := router.NewRouter(
		cfg,
		log,
		authMiddleware,
		rateLimiter,
		handler.NewHealthHandler(db),
		handler.NewIntelligenceHandler(frequencyService, affinityService, anomalyService, log),
		handler.NewAlertHandler(alertService, log),
		handler.NewRunHandler(outreachService, intelligenceJob, log),
	)

	var scheduler *jobs.Scheduler
	if intel.Enabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterIntelligenceJob(scheduler, intelligenceJob, intel.Cron, intel.RunStartupPass); err != nil {
			return fmt.Errorf("failed to register intelligence job: %w", err)
		}
		scheduler.Start()
		log.Info("Scheduler started with nightly intelligence job",
			zap.String("cron_expr", intel.Cron),
			zap.Duration("timeout", intel.Timeout()),
		)
	} else {
		log.Info("Nightly intelligence pass disabled")
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
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// waits for a running pass to finish
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

		log.Info("Server stopped gracefully")
	}

	return nil
}

func outreachConfig(in *config.IntelligenceConfig) service.OutreachConfig {
	day := 24 * time.Hour
	return service.OutreachConfig{
		Cooldown:                   time.Duration(in.CooldownDays) * day,
		RecentActivity:             time.Duration(in.RecentActivityHours) * time.Hour,
		MinConfidence:              in.MinConfidence,
		DueWindowMinDays:           in.DueWindowMinDays,
		DueWindowMaxDays:           in.DueWindowMaxDays,
		MessageDelay:               in.MessageDelay(),
		MaxMessagesPerTenantPerDay: in.MaxMessagesPerTenantPerDay,
		AlertCooldown:              time.Duration(in.AlertCooldownDays) * day,
	}
}
