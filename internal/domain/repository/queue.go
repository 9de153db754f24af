package repository

import (
	"context"

	"github.com/google/uuid"
)

// PosterTask represents a poster-frame extraction job message.
// Published by the API after an ingest finalizes, consumed by the worker.
type PosterTask struct {
	VideoID    uuid.UUID `json:"video_id"`
	SourceKey  string    `json:"source_key"`
	RetryCount int       `json:"retry_count"`
}

// MessageQueue defines the interface for message queue operations.
// Implementations are provided by the infrastructure layer (RabbitMQ).
type MessageQueue interface {
	// PublishPosterTask sends a poster extraction task to the queue.
	PublishPosterTask(ctx context.Context, task PosterTask) error

	// ConsumePosterTasks starts consuming poster tasks from the queue.
	// The handler is called for each received task. Blocks until the
	// context is cancelled or the channel closes.
	ConsumePosterTasks(ctx context.Context, handler func(task PosterTask) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
