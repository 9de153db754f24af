package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Classification is the shape bucket of a video, derived from the
// dimensions of its first video stream. It is used only to choose the
// storage key prefix.
type Classification string

const (
	ClassificationLandscape Classification = "landscape"
	ClassificationPortrait  Classification = "portrait"
	ClassificationOther     Classification = "other"
)

func (c Classification) String() string {
	return string(c)
}

// Classify buckets the given dimensions against a 16:9 reference ratio
// using integer-floor arithmetic. Near-16:9 content that is not exactly
// floor-equal lands in ClassificationOther.
func Classify(width, height int) Classification {
	switch {
	case width == 16*height/9:
		return ClassificationLandscape
	case height == 16*width/9:
		return ClassificationPortrait
	default:
		return ClassificationOther
	}
}

// StorageKeyFor derives the object store key for an ingested video.
// Format: {classification}/{videoID}{ext}
// The derivation is deterministic, so re-ingesting the same video
// overwrites the same remote object instead of creating a duplicate.
func StorageKeyFor(c Classification, videoID uuid.UUID, ext string) string {
	return fmt.Sprintf("%s/%s%s", c, videoID, ext)
}

// Video represents a video metadata record.
// StorageKey and ThumbnailKey hold object store keys, never signed
// URLs; signed URLs expire and are derived on demand at read time.
type Video struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	StorageKey   string
	ThumbnailKey string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	ErrEmptyTitle    = errors.New("title cannot be empty")
	ErrInvalidUserID = errors.New("user ID cannot be nil")
	ErrTitleTooLong  = errors.New("title exceeds maximum length of 255 characters")
)

const maxTitleLength = 255

// NewVideo creates a new Video record with no stored asset yet.
func NewVideo(userID uuid.UUID, title string) (*Video, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len(title) > maxTitleLength {
		return nil, ErrTitleTooLong
	}

	now := time.Now()
	return &Video{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetStorageKey records the object store key after a successful upload.
func (v *Video) SetStorageKey(key string) {
	v.StorageKey = key
	v.UpdatedAt = time.Now()
}

// SetThumbnailKey records the object store key of the video's thumbnail.
func (v *Video) SetThumbnailKey(key string) {
	v.ThumbnailKey = key
	v.UpdatedAt = time.Now()
}

// HasAsset returns true once the video's media has been durably stored.
func (v *Video) HasAsset() bool {
	return v.StorageKey != ""
}

// OwnedBy reports whether the given user owns this video.
func (v *Video) OwnedBy(userID uuid.UUID) bool {
	return v.UserID == userID
}
