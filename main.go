package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"canedrop/internal/config"
	"canedrop/internal/database"
	"canedrop/internal/events"
	"canedrop/internal/jobs"
	"canedrop/internal/logger"
	"canedrop/internal/middleware"
	"canedrop/internal/payments"
	"canedrop/internal/router"
	"canedrop/internal/services"
	"canedrop/pkg/rabbitmq"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("failed to load config", zap.Error(err))
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	loc, err := cfg.Location()
	if err != nil {
		log.Warn("falling back to UTC", zap.Error(err))
	}

	// --- Persistence ---
	repos, closeDB, err := database.Setup(cfg)
	if err != nil {
		log.Fatal("failed to set up database", zap.Error(err))
	}
	defer func() {
		if err := closeDB(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	// --- Message broker (optional) ---
	mqClient := connectBroker(cfg, log)
	var publisher services.EventPublisher
	if mqClient != nil {
		defer mqClient.Close()
		publisher = mqClient
		notifier := events.NewNotifier(log)
		if err := mqClient.Consume(events.NotifierQueue, events.NotifierKeys, notifier.Handle); err != nil {
			log.Warn("failed to start notifier consumer", zap.Error(err))
		}
	}

	// --- Services ---
	shopService := services.NewShopService(repos.Settings, loc).WithEnforcedHours(cfg.EnforceHoursOnOrdering)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = shopService.EnsureDefaults(ctx)
	cancel()
	if err != nil {
		log.Fatal("failed to seed shop settings", zap.Error(err))
	}

	authService := services.NewAuthService(repos.Users, cfg.JWTSecret, cfg.JWTTTL)
	orderService := services.NewOrderService(repos.Orders, shopService, newVerifier(cfg), publisher).
		WithEnforcedHours(cfg.EnforceHoursOnOrdering)
	feedbackService := services.NewFeedbackService(repos.Feedback)

	// --- Scheduled jobs ---
	report := jobs.NewDailyReportTask(orderService, optionalPublisher(mqClient), cfg.DailyReportCron, loc)
	if err := report.Start(); err != nil {
		log.Fatal("failed to schedule daily report", zap.Error(err))
	}
	defer report.Stop()

	// --- HTTP ---
	app := router.New(router.Deps{
		Auth:            authService,
		Orders:          orderService,
		Shop:            shopService,
		Feedback:        feedbackService,
		Limiter:         middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		BrokerConnected: mqClient != nil,
	})

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("starting server", zap.String("addr", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during fiber shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
}

// connectBroker returns nil when RabbitMQ is not configured or unreachable.
func connectBroker(cfg *config.Config, log *zap.Logger) *rabbitmq.Client {
	if cfg.RabbitMQURL == "" {
		log.Info("RABBITMQ_URL not set, events are disabled")
		return nil
	}
	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Warn("RabbitMQ unavailable, events are disabled", zap.Error(err))
		return nil
	}
	return client
}

// optionalPublisher keeps a nil client from becoming a non-nil interface.
func optionalPublisher(client *rabbitmq.Client) jobs.Publisher {
	if client == nil {
		return nil
	}
	return client
}

// newVerifier picks the payment provider from the configuration.
func newVerifier(cfg *config.Config) payments.Verifier {
	if !cfg.PaymentsEnabled() {
		return payments.Disabled{}
	}
	return payments.NewRazorpayVerifier(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
}
