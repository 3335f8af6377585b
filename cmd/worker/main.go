// The worker drains the notification outbox: it publishes events to the
// redis broker for any listening consumers and delivers the email fan-out.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/menahealth/medflow-api/internal/config"
	"github.com/menahealth/medflow-api/internal/email"
	"github.com/menahealth/medflow-api/internal/repository/mongodb"
	"github.com/menahealth/medflow-api/pkg/logger"
	redisbroker "github.com/menahealth/medflow-api/pkg/messaging/redis"
	"github.com/menahealth/medflow-api/pkg/metrics"
	"github.com/menahealth/medflow-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.NewMetrics("medflow_worker")

	db, err := mongodb.NewDB(cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Client().Disconnect(ctx)
	}()

	brokerLogger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "redis-broker").Logger()
	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &brokerLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	outboxRepo := mongodb.NewOutboxRepository(db)
	emailSvc := email.NewSMTPService(cfg.SMTP)
	dispatcher := worker.NewEmailDispatcher(emailSvc, appLogger, appMetrics)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		dispatcher,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
		},
		appLogger,
		appMetrics,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Prometheus scrape endpoint.
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port+1),
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error(err, "metrics server failed")
		}
	}()

	go processor.Start(ctx)
	appLogger.Info("outbox worker started", "poll_interval", cfg.Outbox.PollInterval.String())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
}
