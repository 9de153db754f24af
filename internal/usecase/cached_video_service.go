package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/ykhr-dev/clipstream/internal/domain/model"
	"github.com/ykhr-dev/clipstream/internal/domain/repository"
	"github.com/ykhr-dev/clipstream/internal/infrastructure/cache"
	"github.com/ykhr-dev/clipstream/internal/infrastructure/metrics"
)

// CachedVideoServiceConfig holds configuration for CachedVideoService.
type CachedVideoServiceConfig struct {
	// CacheTTL is the TTL for cached video metadata.
	CacheTTL time.Duration
	// SignedURLTTL is the validity window for signed access URLs.
	SignedURLTTL time.Duration
}

// DefaultCachedVideoServiceConfig returns the default configuration.
func DefaultCachedVideoServiceConfig() CachedVideoServiceConfig {
	return CachedVideoServiceConfig{
		CacheTTL:     5 * time.Minute,
		SignedURLTTL: 5 * time.Minute,
	}
}

// cachedVideoService wraps VideoService with caching on the read path.
// Only the video record is cached; signed URLs are computed after the
// cache lookup so a hit still yields a full-TTL URL.
type cachedVideoService struct {
	delegate VideoService
	repo     repository.VideoRepository
	storage  repository.ObjectStorage
	cache    cache.VideoCache
	sfGroup  singleflight.Group

	cacheTTL     time.Duration
	signedURLTTL time.Duration
}

// NewCachedVideoService creates a new CachedVideoService wrapping the provided VideoService.
func NewCachedVideoService(
	delegate VideoService,
	repo repository.VideoRepository,
	storage repository.ObjectStorage,
	videoCache cache.VideoCache,
	cfg CachedVideoServiceConfig,
) VideoService {
	return &cachedVideoService{
		delegate:     delegate,
		repo:         repo,
		storage:      storage,
		cache:        videoCache,
		cacheTTL:     cfg.CacheTTL,
		signedURLTTL: cfg.SignedURLTTL,
	}
}

// CreateVideo delegates to the underlying service.
// No caching for create operations - the video is immediately returned.
func (s *cachedVideoService) CreateVideo(ctx context.Context, input CreateVideoInput) (*model.Video, error) {
	return s.delegate.CreateVideo(ctx, input)
}

// GetVideo retrieves a video with caching and fresh signed URLs.
// Uses singleflight to prevent cache stampede on concurrent requests for the same video.
func (s *cachedVideoService) GetVideo(ctx context.Context, userID, videoID uuid.UUID) (*VideoOutput, error) {
	// Coalesce concurrent record fetches; ownership and signing stay per-caller
	key := videoID.String()
	result, err, shared := s.sfGroup.Do(key, func() (any, error) {
		return s.getVideoWithCache(ctx, videoID)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return nil, err
	}

	video := result.(*model.Video)
	if !video.OwnedBy(userID) {
		return nil, ErrForbidden
	}

	return signVideo(ctx, s.storage, video, s.signedURLTTL)
}

// ListVideos delegates to the underlying service. List results are not cached.
func (s *cachedVideoService) ListVideos(ctx context.Context, userID uuid.UUID) ([]*VideoOutput, error) {
	return s.delegate.ListVideos(ctx, userID)
}

// getVideoWithCache implements the cache-aside pattern.
func (s *cachedVideoService) getVideoWithCache(ctx context.Context, videoID uuid.UUID) (*model.Video, error) {
	video, err := s.cache.Get(ctx, videoID)
	if err != nil {
		// Log cache error but continue to database
		slog.Warn("cache get failed, falling back to database",
			"video_id", videoID,
			"error", err,
		)
	}

	if video != nil {
		return video, nil
	}

	video, err = s.repo.GetByID(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	if err := s.cache.Set(ctx, video, s.cacheTTL); err != nil {
		// Cache population failure is non-critical
		slog.Warn("failed to cache video",
			"video_id", videoID,
			"error", err,
		)
	}

	return video, nil
}
