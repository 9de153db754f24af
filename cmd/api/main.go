package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/ykhr-dev/clipstream/internal/api/handler"
	"github.com/ykhr-dev/clipstream/internal/api/middleware"
	"github.com/ykhr-dev/clipstream/internal/config"
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

	// Initialize infrastructure clients
	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:       cfg.MinIO.Endpoint,
		PublicEndpoint: cfg.MinIO.PublicEndpoint,
		AccessKey:      cfg.MinIO.AccessKey,
		SecretKey:      cfg.MinIO.SecretKey,
		Bucket:         cfg.MinIO.Bucket,
		UseSSL:         cfg.MinIO.UseSSL,
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

	stagingStore, err := staging.NewStore(cfg.Upload.StagingDir)
	if err != nil {
		return fmt.Errorf("failed to create staging store: %w", err)
	}

	// Assemble services
	runner := media.ExecRunner{}
	prober := media.NewFFprobeProber(runner, cfg.Upload.FFprobePath)
	faststarter := media.NewFFmpegFastStarter(runner, cfg.Upload.FFmpegPath)

	videoRepo := postgres.NewVideoRepository(pgClient.Pool())
	videoCache := cache.NewRedisVideoCache(redisClient)

	videoSvc := usecase.NewVideoService(videoRepo, storageClient, usecase.VideoServiceConfig{
		SignedURLTTL: cfg.Upload.SignedURLTTL,
	})
	cachedVideoSvc := usecase.NewCachedVideoService(videoSvc, videoRepo, storageClient, videoCache, usecase.CachedVideoServiceConfig{
		CacheTTL:     cfg.Upload.SignedURLTTL,
		SignedURLTTL: cfg.Upload.SignedURLTTL,
	})
	ingestSvc := usecase.NewIngestService(
		videoRepo, storageClient, stagingStore, prober, faststarter,
		queueClient, videoCache, logger,
		usecase.IngestServiceConfig{
			MaxVideoSize:     cfg.Upload.MaxVideoSize,
			MaxThumbnailSize: cfg.Upload.MaxThumbnailSize,
			SignedURLTTL:     cfg.Upload.SignedURLTTL,
		},
	)

	videoHandler := handler.NewVideoHandler(cachedVideoSvc, ingestSvc, cfg.Upload.MaxVideoSize, cfg.Upload.MaxThumbnailSize)

	readiness := map[string]handler.Pinger{
		"postgres": pgClient,
		"minio":    storageClient,
	}

	r := setupRouter(logger, cfg.Auth.JWTSecret, videoHandler, readiness)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func setupRouter(logger *slog.Logger, jwtSecret string, videoHandler *handler.VideoHandler, readiness map[string]handler.Pinger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handler.Health)
	r.Get("/ready", handler.Ready(readiness))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(jwtSecret))

		r.Route("/videos", func(r chi.Router) {
			r.Post("/", videoHandler.Create)
			r.Get("/", videoHandler.List)
			r.Get("/{id}", videoHandler.Get)
			r.Post("/{id}/upload", videoHandler.Upload)
			r.Post("/{id}/thumbnail", videoHandler.UploadThumbnail)
		})
	})

	return r
}
