package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"household/internal/amqp"
	"household/internal/cli"
	apphttp "household/internal/http"
	applog "household/internal/log"
	"household/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.UsesDefaultSecret() {
		logger.Warn("SECRET_KEY not set, flash cookies are signed with the development key")
	}

	store := cli.OpenStore(logger, cfg.SQLiteDBPath)

	// A nil *amqp.Client must not be stored in the interface, or the service
	// would try to publish through it.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, record events disabled", applog.FieldError, err)
		} else {
			amqpClient = client
			publisher = client
			logger.Info("Record events enabled", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP_URL not set, record events disabled")
	}

	household := services.NewHousehold(store, publisher)

	srv := apphttp.NewServer(":"+cfg.Port, household, apphttp.Options{
		Secret:    cfg.SecretKey,
		RateLimit: cfg.RateLimitPerMinute,
		Logger:    logger,
	})

	ctx, done := cli.GracefulShutdown(context.Background(), logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", applog.FieldError, err)
			}
		}
		if err := household.Close(); err != nil {
			logger.Error("Store close error", applog.FieldError, err)
		}
	})

	logger.Info("Starting household server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
