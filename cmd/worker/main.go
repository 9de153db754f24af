package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ykhr-dev/clipstream/internal/config"
	"github.com/ykhr-dev/clipstream/internal/domain/repository"
	"github.com/ykhr-dev/clipstream/internal/infrastructure/cache"
	"github.com/ykhr-dev/clipstream/internal/infrastructure/postgres"
	"github.com/ykhr-dev/clipstream/internal/infrastructure/queue"
	"github.com/ykhr-dev/clipstream/internal/infrastructure/storage"
	"github.com/ykhr-dev/clipstream/internal/media"
	"github.com/ykhr-dev/clipstream/internal/staging"
	"github.com/ykhr-dev/clipstream/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Worker.TempDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	// Initialize infrastructure clients
	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MinIO: %w", err)
	}
	logger.Info("connected to MinIO")

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	// Assemble the poster extraction service
	runner := media.ExecRunner{}
	extractor := media.NewFFmpegPosterExtractor(runner, cfg.Upload.FFmpegPath)

	videoRepo := postgres.NewVideoRepository(pgClient.Pool())
	videoCache := cache.NewRedisVideoCache(redisClient)
	posterSvc := usecase.NewPosterService(
		videoRepo, storageClient, extractor, videoCache, logger,
		usecase.PosterServiceConfig{
			TempDir:    cfg.Worker.TempDir,
			MaxRetries: cfg.Worker.MaxRetries,
		},
	)

	// Sweep abandoned staging files on a schedule
	stagingStore, err := staging.NewStore(cfg.Upload.StagingDir)
	if err != nil {
		return fmt.Errorf("failed to create staging store: %w", err)
	}
	janitor := staging.NewJanitor(stagingStore, cfg.Worker.JanitorMaxAge)
	if err := janitor.Start(cfg.Worker.JanitorSchedule); err != nil {
		return fmt.Errorf("failed to start staging janitor: %w", err)
	}
	defer janitor.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Track in-flight tasks so shutdown can wait for them
	var wg sync.WaitGroup

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting worker, consuming poster tasks")
		err := queueClient.ConsumePosterTasks(ctx, func(task repository.PosterTask) error {
			wg.Add(1)
			defer wg.Done()

			logger.Info("processing poster task",
				slog.String("video_id", task.VideoID.String()),
				slog.Int("retry_count", task.RetryCount),
			)

			if err := posterSvc.HandleTask(ctx, task); err != nil {
				logger.Error("poster task failed",
					slog.String("video_id", task.VideoID.String()),
					slog.Int("retry_count", task.RetryCount),
					slog.String("error", err.Error()),
				)
				return err
			}

			return nil
		})
		if err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))
	}

	cancel()

	// Wait for in-flight tasks, but not forever
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("worker stopped")
	case <-time.After(cfg.Worker.ShutdownTimeout):
		logger.Warn("shutdown timeout reached, abandoning in-flight tasks")
	}

	return nil
}
