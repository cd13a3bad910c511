package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"accountsvc/internal/cache"
	"accountsvc/internal/database"
	"accountsvc/internal/handlers"
	"accountsvc/internal/jobs"
	"accountsvc/internal/log"
	"accountsvc/internal/mail"
	"accountsvc/internal/metrics"
	"accountsvc/internal/queue"
	"accountsvc/internal/server"
	"accountsvc/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the maintenance scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := log.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.AutoMigrate {
		if err := migrateUp(cfg.Postgres.DSN); err != nil {
			return err
		}
		logger.Info().Msg("database migrations applied")
	}

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}

	var producer jobs.Publisher
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, maintenance scheduling disabled")
	} else {
		producer = queue.NewProducer(redisClient, cfg.Worker.Stream)
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("init object store: %w", err)
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure avatar bucket failed")
	}

	registry := metrics.NewRegistry(metrics.Register)

	mailer := mail.NewSMTPMailer(cfg.Mail)
	if cfg.Mail.Host == "" {
		logger.Warn().Msg("mail.host is empty, password reset emails will fail")
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, dbPool, redisClient, objectStore, mailer)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet, registry)

	scheduler := jobs.NewScheduler(producer, cfg.Worker.PurgeSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	serveErr := waitForStop(ctx, errCh, logger)
	shutdown(logger, httpServer, scheduler, dbPool, redisClient)
	return serveErr
}

// waitForStop blocks until a shutdown signal or until the HTTP server
// returns. A server error is returned so the process exits non-zero.
func waitForStop(ctx context.Context, errCh <-chan error, logger zerolog.Logger) error {
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
		return nil
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server failed")
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}
}

func shutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
		logger.Warn().Msg("scheduler did not stop in time")
	}

	db.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
