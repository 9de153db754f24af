package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ykhr-dev/clipstream/internal/domain/repository"
	"github.com/ykhr-dev/clipstream/internal/infrastructure/cache"
	"github.com/ykhr-dev/clipstream/internal/infrastructure/metrics"
	"github.com/ykhr-dev/clipstream/internal/media"
)

const posterKeyPrefix = "posters/"

// PosterService defines the interface for poster-frame extraction jobs.
type PosterService interface {
	// HandleTask processes one poster task: download the stored asset,
	// extract a frame, upload it, and point the video's thumbnail at it
	// unless the owner already uploaded one. Returning an error requeues
	// the task; tasks past the retry limit are dropped with a nil return
	// so they are acked instead of cycling forever.
	HandleTask(ctx context.Context, task repository.PosterTask) error
}

// PosterServiceConfig holds configuration for PosterService.
type PosterServiceConfig struct {
	TempDir    string
	MaxRetries int
}

// DefaultPosterServiceConfig returns the default configuration.
func DefaultPosterServiceConfig() PosterServiceConfig {
	return PosterServiceConfig{
		TempDir:    os.TempDir(),
		MaxRetries: 3,
	}
}

type posterService struct {
	repo      repository.VideoRepository
	storage   repository.ObjectStorage
	extractor media.PosterExtractor
	cache     cache.VideoCache
	logger    *slog.Logger

	tempDir    string
	maxRetries int
}

// NewPosterService creates a new PosterService instance.
// videoCache may be nil; invalidation is then skipped.
func NewPosterService(
	repo repository.VideoRepository,
	storage repository.ObjectStorage,
	extractor media.PosterExtractor,
	videoCache cache.VideoCache,
	logger *slog.Logger,
	cfg PosterServiceConfig,
) PosterService {
	return &posterService{
		repo:       repo,
		storage:    storage,
		extractor:  extractor,
		cache:      videoCache,
		logger:     logger,
		tempDir:    cfg.TempDir,
		maxRetries: cfg.MaxRetries,
	}
}

// HandleTask processes one poster extraction task.
func (s *posterService) HandleTask(ctx context.Context, task repository.PosterTask) error {
	if task.RetryCount > s.maxRetries {
		metrics.PosterTasksTotal.WithLabelValues(metrics.StatusDropped).Inc()
		s.logger.Error("dropping poster task after retries exhausted",
			slog.String("video_id", task.VideoID.String()),
			slog.Int("retry_count", task.RetryCount),
		)
		return nil
	}

	err := s.extract(ctx, task)
	if err != nil {
		metrics.PosterTasksTotal.WithLabelValues(metrics.StatusError).Inc()
		return err
	}

	metrics.PosterTasksTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	return nil
}

func (s *posterService) extract(ctx context.Context, task repository.PosterTask) error {
	sourcePath := filepath.Join(s.tempDir, task.VideoID.String()+".mp4")
	posterPath := filepath.Join(s.tempDir, task.VideoID.String()+".jpg")
	defer func() {
		removeIfExists(sourcePath)
		removeIfExists(posterPath)
	}()

	if err := s.download(ctx, task.SourceKey, sourcePath); err != nil {
		return fmt.Errorf("failed to download source: %w", err)
	}

	if err := s.extractor.Extract(ctx, sourcePath, posterPath); err != nil {
		return fmt.Errorf("failed to extract poster: %w", err)
	}

	key := posterKeyPrefix + task.VideoID.String() + ".jpg"
	if err := s.uploadPoster(ctx, key, posterPath); err != nil {
		return fmt.Errorf("failed to upload poster: %w", err)
	}

	video, err := s.repo.GetByID(ctx, task.VideoID)
	if err != nil {
		return fmt.Errorf("failed to get video: %w", err)
	}

	// An owner-uploaded thumbnail always wins over a generated poster
	if video.ThumbnailKey != "" {
		return nil
	}

	video.SetThumbnailKey(key)
	if err := s.repo.Update(ctx, video); err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, task.VideoID); err != nil {
			s.logger.Warn("failed to invalidate video cache",
				slog.String("video_id", task.VideoID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("poster extracted",
		slog.String("video_id", task.VideoID.String()),
		slog.String("key", key),
	)

	return nil
}

func (s *posterService) download(ctx context.Context, key, destPath string) error {
	obj, err := s.storage.Download(ctx, key)
	if err != nil {
		return err
	}
	defer obj.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, obj); err != nil {
		_ = f.Close()
		_ = os.Remove(destPath)
		return err
	}

	return f.Close()
}

func (s *posterService) uploadPoster(ctx context.Context, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return s.storage.Upload(ctx, key, f, "image/jpeg")
}

func removeIfExists(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove temp file",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
