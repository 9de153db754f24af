package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ykhr-dev/clipstream/internal/domain/model"
	"github.com/ykhr-dev/clipstream/internal/domain/repository"
)

var (
	// ErrForbidden is returned when a user operates on a video they do not own.
	ErrForbidden = errors.New("video belongs to another user")

	// ErrUnsupportedMediaType is returned when an upload's media type is not accepted.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrVideoTooLarge is returned when a video upload exceeds the size limit.
	ErrVideoTooLarge = errors.New("video exceeds maximum upload size")

	// ErrThumbnailTooLarge is returned when a thumbnail upload exceeds the size limit.
	ErrThumbnailTooLarge = errors.New("thumbnail exceeds maximum upload size")
)

// CreateVideoInput contains the input parameters for creating a video.
type CreateVideoInput struct {
	UserID uuid.UUID
	Title  string
}

// VideoOutput is a video record paired with freshly signed access URLs.
// The URLs are computed per request and are never stored anywhere.
type VideoOutput struct {
	Video        *model.Video
	VideoURL     string
	ThumbnailURL string
}

// VideoService defines the interface for video metadata operations.
type VideoService interface {
	// CreateVideo creates a new video record owned by the caller.
	CreateVideo(ctx context.Context, input CreateVideoInput) (*model.Video, error)

	// GetVideo retrieves a video with signed access URLs.
	// Returns ErrForbidden if the caller does not own the video.
	GetVideo(ctx context.Context, userID, videoID uuid.UUID) (*VideoOutput, error)

	// ListVideos retrieves all videos owned by the caller, with signed
	// access URLs for each stored asset.
	ListVideos(ctx context.Context, userID uuid.UUID) ([]*VideoOutput, error)
}

// VideoServiceConfig holds configuration for VideoService.
type VideoServiceConfig struct {
	SignedURLTTL time.Duration
}

// DefaultVideoServiceConfig returns the default configuration.
func DefaultVideoServiceConfig() VideoServiceConfig {
	return VideoServiceConfig{
		SignedURLTTL: 5 * time.Minute,
	}
}

type videoService struct {
	repo    repository.VideoRepository
	storage repository.ObjectStorage

	signedURLTTL time.Duration
}

// NewVideoService creates a new VideoService instance.
func NewVideoService(
	repo repository.VideoRepository,
	storage repository.ObjectStorage,
	cfg VideoServiceConfig,
) VideoService {
	return &videoService{
		repo:         repo,
		storage:      storage,
		signedURLTTL: cfg.SignedURLTTL,
	}
}

// CreateVideo creates a new video record owned by the caller.
func (s *videoService) CreateVideo(ctx context.Context, input CreateVideoInput) (*model.Video, error) {
	video, err := model.NewVideo(input.UserID, input.Title)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}

	return video, nil
}

// GetVideo retrieves a video with signed access URLs.
func (s *videoService) GetVideo(ctx context.Context, userID, videoID uuid.UUID) (*VideoOutput, error) {
	video, err := s.repo.GetByID(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	if !video.OwnedBy(userID) {
		return nil, ErrForbidden
	}

	return signVideo(ctx, s.storage, video, s.signedURLTTL)
}

// ListVideos retrieves all videos owned by the caller.
func (s *videoService) ListVideos(ctx context.Context, userID uuid.UUID) ([]*VideoOutput, error) {
	videos, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	outputs := make([]*VideoOutput, 0, len(videos))
	for _, video := range videos {
		output, err := signVideo(ctx, s.storage, video, s.signedURLTTL)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output)
	}

	return outputs, nil
}

// signVideo pairs a video record with fresh signed URLs for whichever
// assets it has. Signing happens at read time, after any cache lookup,
// so every response carries a full-TTL URL.
func signVideo(ctx context.Context, storage repository.ObjectStorage, video *model.Video, ttl time.Duration) (*VideoOutput, error) {
	output := &VideoOutput{Video: video}

	if video.StorageKey != "" {
		url, err := storage.SignedDownloadURL(ctx, video.StorageKey, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to sign video URL: %w", err)
		}
		output.VideoURL = url
	}

	if video.ThumbnailKey != "" {
		url, err := storage.SignedDownloadURL(ctx, video.ThumbnailKey, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to sign thumbnail URL: %w", err)
		}
		output.ThumbnailURL = url
	}

	return output, nil
}
