package usecase

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ykhr-dev/clipstream/internal/domain/model"
	"github.com/ykhr-dev/clipstream/internal/domain/repository"
	"github.com/ykhr-dev/clipstream/internal/media"
)

// mockVideoRepository provides a configurable mock for VideoRepository.
type mockVideoRepository struct {
	createFn      func(ctx context.Context, video *model.Video) error
	getByIDFn     func(ctx context.Context, id uuid.UUID) (*model.Video, error)
	getByUserIDFn func(ctx context.Context, userID uuid.UUID) ([]*model.Video, error)
	updateFn      func(ctx context.Context, video *model.Video) error

	updateCalls int
}

func (m *mockVideoRepository) Create(ctx context.Context, video *model.Video) error {
	if m.createFn != nil {
		return m.createFn(ctx, video)
	}
	return nil
}

func (m *mockVideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrVideoNotFound
}

func (m *mockVideoRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Video, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockVideoRepository) Update(ctx context.Context, video *model.Video) error {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, video)
	}
	return nil
}

// mockObjectStorage provides a configurable mock for ObjectStorage.
type mockObjectStorage struct {
	uploadFn            func(ctx context.Context, key string, reader io.Reader, contentType string) error
	downloadFn          func(ctx context.Context, key string) (io.ReadCloser, error)
	signedDownloadURLFn func(ctx context.Context, key string, expiry time.Duration) (string, error)
	deleteFn            func(ctx context.Context, key string) error
	existsFn            func(ctx context.Context, key string) (bool, error)
}

func (m *mockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, reader, contentType)
	}
	return nil
}

func (m *mockObjectStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.downloadFn != nil {
		return m.downloadFn(ctx, key)
	}
	return nil, repository.ErrObjectNotFound
}

func (m *mockObjectStorage) SignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.signedDownloadURLFn != nil {
		return m.signedDownloadURLFn(ctx, key, expiry)
	}
	return "http://example.com/" + key, nil
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

// mockMessageQueue provides a configurable mock for MessageQueue.
type mockMessageQueue struct {
	publishFn func(ctx context.Context, task repository.PosterTask) error

	published []repository.PosterTask
}

func (m *mockMessageQueue) PublishPosterTask(ctx context.Context, task repository.PosterTask) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, task)
	}
	m.published = append(m.published, task)
	return nil
}

func (m *mockMessageQueue) ConsumePosterTasks(ctx context.Context, handler func(task repository.PosterTask) error) error {
	return nil
}

func (m *mockMessageQueue) Close() error {
	return nil
}

// mockVideoCache provides a configurable mock for VideoCache.
type mockVideoCache struct {
	getFn    func(ctx context.Context, videoID uuid.UUID) (*model.Video, error)
	setFn    func(ctx context.Context, video *model.Video, ttl time.Duration) error
	deleteFn func(ctx context.Context, videoID uuid.UUID) error

	setCalls    int
	deleteCalls int
}

func (m *mockVideoCache) Get(ctx context.Context, videoID uuid.UUID) (*model.Video, error) {
	if m.getFn != nil {
		return m.getFn(ctx, videoID)
	}
	return nil, nil
}

func (m *mockVideoCache) Set(ctx context.Context, video *model.Video, ttl time.Duration) error {
	m.setCalls++
	if m.setFn != nil {
		return m.setFn(ctx, video, ttl)
	}
	return nil
}

func (m *mockVideoCache) Delete(ctx context.Context, videoID uuid.UUID) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, videoID)
	}
	return nil
}

// fakeProber returns fixed dimensions without running ffprobe.
type fakeProber struct {
	dims media.Dimensions
	err  error

	probed []string
}

func (f *fakeProber) Probe(ctx context.Context, path string) (media.Dimensions, error) {
	f.probed = append(f.probed, path)
	return f.dims, f.err
}

// fakeFastStarter mimics the rewrite step by creating the sibling
// output file on disk, matching what the real implementation does.
// On its error branch it leaves a partial output behind and returns
// its path, the same contract the real implementation honors when
// ffmpeg dies mid-write.
type fakeFastStarter struct {
	err error
}

func (f *fakeFastStarter) Process(ctx context.Context, inputPath string) (string, error) {
	outputPath := inputPath + ".processed"
	if f.err != nil {
		if err := os.WriteFile(outputPath, []byte("partial"), 0644); err != nil {
			return "", err
		}
		return outputPath, f.err
	}
	if err := os.WriteFile(outputPath, []byte("processed"), 0644); err != nil {
		return "", err
	}
	return outputPath, nil
}

// fakePosterExtractor writes a placeholder poster file.
type fakePosterExtractor struct {
	err error
}

func (f *fakePosterExtractor) Extract(ctx context.Context, inputPath, outputPath string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("jpeg"), 0644)
}
