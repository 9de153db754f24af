package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ykhr-dev/clipstream/internal/domain/model"
	"github.com/ykhr-dev/clipstream/internal/domain/repository"
	"github.com/ykhr-dev/clipstream/internal/infrastructure/cache"
	"github.com/ykhr-dev/clipstream/internal/infrastructure/metrics"
	"github.com/ykhr-dev/clipstream/internal/media"
	"github.com/ykhr-dev/clipstream/internal/staging"
)

const (
	videoMediaType = "video/mp4"

	thumbnailKeyPrefix = "thumbnails/"
)

// IngestVideoInput contains the input parameters for ingesting a video asset.
type IngestVideoInput struct {
	UserID  uuid.UUID
	VideoID uuid.UUID
	// ContentType is the declared media type of the upload, including
	// any parameters (e.g. "video/mp4; charset=binary").
	ContentType string
	// Size is the declared size in bytes, or -1 when unknown. The
	// stream is capped regardless of what the caller declares.
	Size int64
	Body io.Reader
}

// UploadThumbnailInput contains the input parameters for a thumbnail upload.
type UploadThumbnailInput struct {
	UserID      uuid.UUID
	VideoID     uuid.UUID
	ContentType string
	Body        io.Reader
}

// IngestService defines the interface for the video ingestion pipeline.
type IngestService interface {
	// IngestVideo runs the full pipeline for an uploaded video: stage
	// to a local temp file, probe dimensions, classify aspect ratio,
	// rewrite for progressive playback, upload to the object store,
	// and finally update the video record. Metadata is updated only
	// after the asset is durably stored; on any failure the record is
	// left untouched. All temp files are removed on every exit path.
	// The returned output carries freshly signed access URLs so the
	// caller never has to expose a raw storage key.
	IngestVideo(ctx context.Context, input IngestVideoInput) (*VideoOutput, error)

	// UploadThumbnail stores a caller-provided thumbnail image and
	// updates the video record to reference it.
	UploadThumbnail(ctx context.Context, input UploadThumbnailInput) (*VideoOutput, error)
}

// IngestServiceConfig holds configuration for IngestService.
type IngestServiceConfig struct {
	MaxVideoSize     int64
	MaxThumbnailSize int64
	SignedURLTTL     time.Duration
}

// DefaultIngestServiceConfig returns the default configuration.
func DefaultIngestServiceConfig() IngestServiceConfig {
	return IngestServiceConfig{
		MaxVideoSize:     1 << 30, // 1 GiB
		MaxThumbnailSize: 10 << 20,
		SignedURLTTL:     5 * time.Minute,
	}
}

type ingestService struct {
	repo        repository.VideoRepository
	storage     repository.ObjectStorage
	staging     *staging.Store
	prober      media.Prober
	faststarter media.FastStarter
	queue       repository.MessageQueue
	cache       cache.VideoCache
	logger      *slog.Logger

	maxVideoSize     int64
	maxThumbnailSize int64
	signedURLTTL     time.Duration
}

// NewIngestService creates a new IngestService instance.
// queue and videoCache may be nil; poster tasks and cache invalidation
// are then skipped.
func NewIngestService(
	repo repository.VideoRepository,
	storage repository.ObjectStorage,
	stagingStore *staging.Store,
	prober media.Prober,
	faststarter media.FastStarter,
	queue repository.MessageQueue,
	videoCache cache.VideoCache,
	logger *slog.Logger,
	cfg IngestServiceConfig,
) IngestService {
	return &ingestService{
		repo:             repo,
		storage:          storage,
		staging:          stagingStore,
		prober:           prober,
		faststarter:      faststarter,
		queue:            queue,
		cache:            videoCache,
		logger:           logger,
		maxVideoSize:     cfg.MaxVideoSize,
		maxThumbnailSize: cfg.MaxThumbnailSize,
		signedURLTTL:     cfg.SignedURLTTL,
	}
}

// IngestVideo runs the full ingestion pipeline for an uploaded video.
func (s *ingestService) IngestVideo(ctx context.Context, input IngestVideoInput) (*VideoOutput, error) {
	start := time.Now()

	// Reject bad uploads before touching disk or spawning subprocesses
	mediaType, _, err := mime.ParseMediaType(input.ContentType)
	if err != nil || mediaType != videoMediaType {
		return nil, ErrUnsupportedMediaType
	}
	if input.Size > s.maxVideoSize {
		return nil, ErrVideoTooLarge
	}

	video, err := s.repo.GetByID(ctx, input.VideoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	if !video.OwnedBy(input.UserID) {
		return nil, ErrForbidden
	}

	// Every path created below is released before return, success or not
	var tempFiles []string
	defer func() {
		for _, path := range tempFiles {
			s.staging.Release(path)
		}
	}()

	stagedPath, stagedSize, err := s.stage(input.VideoID, input.Body)
	if stagedPath != "" {
		tempFiles = append(tempFiles, stagedPath)
	}
	observeStage(metrics.StageStage, err)
	if err != nil {
		return nil, err
	}

	dims, err := s.prober.Probe(ctx, stagedPath)
	observeStage(metrics.StageProbe, err)
	if err != nil {
		return nil, fmt.Errorf("failed to probe video: %w", err)
	}
	classification := model.Classify(dims.Width, dims.Height)

	processedPath, err := s.faststarter.Process(ctx, stagedPath)
	if processedPath != "" {
		tempFiles = append(tempFiles, processedPath)
	}
	observeStage(metrics.StageFastStart, err)
	if err != nil {
		return nil, fmt.Errorf("failed to process video: %w", err)
	}

	key := model.StorageKeyFor(classification, input.VideoID, ".mp4")
	err = s.uploadFile(ctx, key, processedPath)
	observeStage(metrics.StageUpload, err)
	if err != nil {
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}

	video.SetStorageKey(key)
	err = s.repo.Update(ctx, video)
	observeStage(metrics.StageFinalize, err)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize video: %w", err)
	}

	metrics.IngestedBytesTotal.Add(float64(stagedSize))
	metrics.IngestDurationSeconds.Observe(time.Since(start).Seconds())

	s.invalidateCache(ctx, input.VideoID)
	s.publishPosterTask(ctx, input.VideoID, key)

	// The response carries a signed URL, never the raw storage key.
	output, err := signVideo(ctx, s.storage, video, s.signedURLTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("video ingested",
		slog.String("video_id", input.VideoID.String()),
		slog.String("classification", classification.String()),
		slog.String("key", key),
		slog.Int("width", dims.Width),
		slog.Int("height", dims.Height),
		slog.Int64("bytes", stagedSize),
		slog.Duration("duration", time.Since(start)),
	)

	return output, nil
}

// stage writes the upload stream to the staging store and enforces the
// size cap for streams whose length was not declared up front.
func (s *ingestService) stage(videoID uuid.UUID, body io.Reader) (string, int64, error) {
	limited := io.LimitReader(body, s.maxVideoSize+1)

	path, err := s.staging.Stage(videoID, limited)
	if err != nil {
		return "", 0, fmt.Errorf("failed to stage video: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return path, 0, fmt.Errorf("failed to stat staged video: %w", err)
	}
	if info.Size() > s.maxVideoSize {
		return path, 0, ErrVideoTooLarge
	}

	return path, info.Size(), nil
}

func (s *ingestService) uploadFile(ctx context.Context, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open processed file: %w", err)
	}
	defer f.Close()

	return s.storage.Upload(ctx, key, f, videoMediaType)
}

// UploadThumbnail stores a caller-provided thumbnail image.
func (s *ingestService) UploadThumbnail(ctx context.Context, input UploadThumbnailInput) (*VideoOutput, error) {
	mediaType, _, err := mime.ParseMediaType(input.ContentType)
	if err != nil {
		return nil, ErrUnsupportedMediaType
	}

	var ext string
	switch mediaType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	default:
		return nil, ErrUnsupportedMediaType
	}

	video, err := s.repo.GetByID(ctx, input.VideoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	if !video.OwnedBy(input.UserID) {
		return nil, ErrForbidden
	}

	data, err := io.ReadAll(io.LimitReader(input.Body, s.maxThumbnailSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read thumbnail: %w", err)
	}
	if int64(len(data)) > s.maxThumbnailSize {
		return nil, ErrThumbnailTooLarge
	}

	key := thumbnailKeyPrefix + input.VideoID.String() + ext
	if err := s.storage.Upload(ctx, key, bytes.NewReader(data), mediaType); err != nil {
		return nil, fmt.Errorf("failed to upload thumbnail: %w", err)
	}

	video.SetThumbnailKey(key)
	if err := s.repo.Update(ctx, video); err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}

	s.invalidateCache(ctx, input.VideoID)

	return signVideo(ctx, s.storage, video, s.signedURLTTL)
}

func (s *ingestService) invalidateCache(ctx context.Context, videoID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, videoID); err != nil {
		s.logger.Warn("failed to invalidate video cache",
			slog.String("video_id", videoID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// publishPosterTask hands poster-frame extraction to the worker.
// Best-effort: a publish failure never fails an ingest that has
// already been finalized.
func (s *ingestService) publishPosterTask(ctx context.Context, videoID uuid.UUID, sourceKey string) {
	if s.queue == nil {
		return
	}
	task := repository.PosterTask{
		VideoID:   videoID,
		SourceKey: sourceKey,
	}
	if err := s.queue.PublishPosterTask(ctx, task); err != nil {
		s.logger.Warn("failed to publish poster task",
			slog.String("video_id", videoID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func observeStage(stage string, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	metrics.IngestStagesTotal.WithLabelValues(stage, status).Inc()
}
