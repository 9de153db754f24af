package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ykhr-dev/clipstream/internal/domain/model"
)

// VideoRepository defines the interface for video metadata persistence.
// Implementations are provided by the infrastructure layer (PostgreSQL).
type VideoRepository interface {
	// Create persists a new video record.
	// Returns ErrDuplicateVideo if the video already exists.
	Create(ctx context.Context, video *model.Video) error

	// GetByID retrieves a video by its unique identifier.
	// Returns ErrVideoNotFound if the video does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error)

	// GetByUserID retrieves all videos belonging to a user.
	// Returns an empty slice if the user has no videos.
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Video, error)

	// Update persists changes to an existing video record.
	// The ingestion pipeline calls this exactly once per run, after the
	// asset has been durably stored, never before.
	// Returns ErrVideoNotFound if the video does not exist.
	Update(ctx context.Context, video *model.Video) error
}
