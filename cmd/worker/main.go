package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"accountsvc/internal/cache"
	"accountsvc/internal/config"
	"accountsvc/internal/database"
	"accountsvc/internal/log"
	"accountsvc/internal/metrics"
	"accountsvc/internal/queue"
	"accountsvc/internal/repository"
	"accountsvc/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment).With().Str("process", "worker").Logger()
	if cfg.Postgres.DSN == "" {
		logger.Fatal().Err(config.ErrMissingDSN).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	processor := tasks.NewProcessor(repository.NewResetTokenRepository(dbPool), logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Worker.Stream,
		cfg.Worker.Group,
		cfg.Worker.Consumer,
		cfg.Worker.ClaimInterval,
		logger,
		processor,
	)

	var metricsServer *metrics.Server
	if cfg.Worker.MetricsAddr != "" {
		metricsServer = metrics.NewServer(cfg.Worker.MetricsAddr, metrics.NewRegistry(metrics.RegisterWorker), logger)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	logger.Info().
		Str("stream", cfg.Worker.Stream).
		Str("group", cfg.Worker.Group).
		Str("consumer", cfg.Worker.Consumer).
		Msg("worker starting")

	err = consumer.Start(ctx)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("metrics server shutdown failed")
		}
		cancel()
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("consumer stopped unexpectedly")
		stop()
		os.Exit(1)
	}
	logger.Info().Msg("worker exited cleanly")
}
