package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/claimdesk/claim-notifier/internal/config"
	"github.com/claimdesk/claim-notifier/internal/dispatch"
	"github.com/claimdesk/claim-notifier/internal/handler"
	"github.com/claimdesk/claim-notifier/internal/identifier"
	"github.com/claimdesk/claim-notifier/internal/infra/postgresql"
	"github.com/claimdesk/claim-notifier/internal/infra/postgresql/migrations"
	infraredis "github.com/claimdesk/claim-notifier/internal/infra/redis"
	"github.com/claimdesk/claim-notifier/internal/observability"
	"github.com/claimdesk/claim-notifier/internal/provider"
	"github.com/claimdesk/claim-notifier/internal/repository"
	"github.com/claimdesk/claim-notifier/internal/transport"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	queueRepo := repository.NewGormQueueRepo(db, cfg.MaxAttempts)
	runRepo := repository.NewGormRunRepo(db)

	emailSender := provider.NewResendProvider(cfg.ResendAPIKey, cfg.EmailFrom)
	smsSender := provider.NewTwilioProvider(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, cfg.TwilioMessagingServiceSID)

	dispatcher, err := dispatch.NewDispatcher(
		queueRepo,
		runRepo,
		emailSender,
		smsSender,
		limiter,
		cfg.BatchLimit,
		cfg.LeaseTTL(),
		logger,
	)
	if err != nil {
		logger.Fatal("dispatcher initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})

	app.Use(requestid.New())
	app.Use(transport.CorrelationContext())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST,GET,OPTIONS",
		AllowHeaders: "authorization, x-client-info, apikey, content-type",
	}))
	app.Use(metrics.HTTPMiddleware())

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, sqlDB, rdb)

	env := handler.EnvInfo{DSNSource: cfg.DSNSource, KeySource: cfg.KeySource}
	limits := handler.Limits{BatchLimit: cfg.BatchLimit, MaxAttempts: cfg.MaxAttempts}
	if err := handler.RegisterDispatchRoutes(app, dispatcher, env, limits, cfg.ServiceKey); err != nil {
		logger.Fatal("dispatch route registration failed", zap.Error(err))
	}
	if err := handler.RegisterQueueRoutes(app, queueRepo, runRepo, cfg.ServiceKey); err != nil {
		logger.Fatal("queue route registration failed", zap.Error(err))
	}
	if err := handler.RegisterIDRoutes(app, identifier.NewGenerator(), cfg.ServiceKey); err != nil {
		logger.Fatal("id route registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if interval := cfg.SweepInterval(); interval > 0 {
		sweeper, err := dispatch.NewSweeper(dispatcher, interval, logger)
		if err != nil {
			logger.Fatal("sweeper initialization failed", zap.Error(err))
		}
		go func() {
			if err := sweeper.Start(ctx); err != nil {
				logger.Error("sweeper stopped", zap.Error(err))
			}
		}()
		logger.Info("in-process sweeper enabled", zap.Duration("interval", interval))
	}

	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	logger.Info("claim-notifier api started",
		zap.Int("port", cfg.APIPort),
		zap.String("dsnSource", cfg.DSNSource),
		zap.Int("batchLimit", cfg.BatchLimit),
		zap.Int("maxAttempts", cfg.MaxAttempts),
	)

	<-ctx.Done()

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
