package bootstrap

import (
	"context"
	"log"
	"time"

	"churnguard-be/internal/config"
	"churnguard-be/internal/controller"
	"churnguard-be/internal/handler"
	"churnguard-be/internal/pkg/logger"
	"churnguard-be/internal/pkg/mailer"
	"churnguard-be/internal/pkg/payment"
	"churnguard-be/internal/pkg/serverutils"
	"churnguard-be/internal/repository/unitofwork"
	"churnguard-be/internal/service"
	"churnguard-be/internal/websocket"

	pkgNats "churnguard-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WebhookController  controller.IWebhookController
	SessionController  controller.ISessionController
	RecoveryController controller.IRecoveryController

	// Background Services (Exposed for main.go to run)
	NotificationService *service.NotificationService

	// WebSockets
	FeedHandler  *handler.FeedHandler
	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// 2. Infrastructure
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	redisUp := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		redisUp = false
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/feed.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Widget endpoints are public; counters shared via Redis when it is
	// reachable, per-process otherwise.
	var limiter serverutils.RateLimiter
	if redisUp {
		limiter = serverutils.NewRedisRateLimiter(rdb, 30, time.Minute)
	} else {
		limiter = serverutils.NewMemoryRateLimiter(30, time.Minute)
	}

	applier := payment.NewStripeApplier(cfg.Stripe.SecretKey, cfg.Fees.MockMRR, sysLogger)
	feeCalculator := service.NewFeeCalculator(service.FeePolicy{
		Rate:       cfg.Fees.Rate,
		PerSaveCap: cfg.Fees.PerSaveCap,
		MonthlyCap: cfg.Fees.MonthlyCap,
	}, sysLogger)

	// 3. Services
	riskService := service.NewRiskService(uowFactory, sysLogger)
	recoveryService := service.NewRecoveryService(uowFactory, sysLogger,
		time.Duration(cfg.Fees.CaseDeadlineH)*time.Hour)
	webhookService := service.NewWebhookService(uowFactory, riskService, recoveryService,
		natsPub, sysLogger, cfg.Stripe.WebhookSecret)
	sessionService := service.NewSessionService(uowFactory, applier, feeCalculator,
		natsPub, sysLogger, cfg.App.ClientURL)

	var notificationService *service.NotificationService
	if natsSub != nil {
		notificationService = service.NewNotificationService(uowFactory, natsSub, emailService, wsHub, sysLogger)
	}

	// 4. Controllers
	return &Container{
		WebhookController:   controller.NewWebhookController(webhookService),
		SessionController:   controller.NewSessionController(sessionService, limiter),
		RecoveryController:  controller.NewRecoveryController(recoveryService, riskService),
		NotificationService: notificationService,
		FeedHandler:         handler.NewFeedHandler(wsHub, wsLogger),
		WebSocketHub:        wsHub,
		Logger:              sysLogger,
	}
}
