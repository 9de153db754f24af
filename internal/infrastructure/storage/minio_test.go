package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/ykhr-dev/clipstream/internal/domain/repository"
)

// mockObjectReader implements objectReader for testing.
type mockObjectReader struct {
	data     []byte
	offset   int
	statFunc func() (minio.ObjectInfo, error)
}

func (m *mockObjectReader) Read(p []byte) (int, error) {
	if m.offset >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.offset:])
	m.offset += n
	return n, nil
}

func (m *mockObjectReader) Close() error { return nil }

func (m *mockObjectReader) Stat() (minio.ObjectInfo, error) {
	if m.statFunc != nil {
		return m.statFunc()
	}
	return minio.ObjectInfo{}, nil
}

// mockMinioClient implements minioClient for testing.
type mockMinioClient struct {
	bucketExistsFunc       func(ctx context.Context, bucketName string) (bool, error)
	putObjectFunc          func(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	getObjectFunc          func(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error)
	presignedGetObjectFunc func(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
	removeObjectFunc       func(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	statObjectFunc         func(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

func (m *mockMinioClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	if m.bucketExistsFunc != nil {
		return m.bucketExistsFunc(ctx, bucketName)
	}
	return true, nil
}

func (m *mockMinioClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.putObjectFunc != nil {
		return m.putObjectFunc(ctx, bucketName, objectName, reader, objectSize, opts)
	}
	return minio.UploadInfo{}, nil
}

func (m *mockMinioClient) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error) {
	if m.getObjectFunc != nil {
		return m.getObjectFunc(ctx, bucketName, objectName, opts)
	}
	return &mockObjectReader{}, nil
}

func (m *mockMinioClient) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	if m.presignedGetObjectFunc != nil {
		return m.presignedGetObjectFunc(ctx, bucketName, objectName, expiry, reqParams)
	}
	return nil, nil
}

func (m *mockMinioClient) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	if m.removeObjectFunc != nil {
		return m.removeObjectFunc(ctx, bucketName, objectName, opts)
	}
	return nil
}

func (m *mockMinioClient) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if m.statObjectFunc != nil {
		return m.statObjectFunc(ctx, bucketName, objectName, opts)
	}
	return minio.ObjectInfo{}, nil
}

func newTestClient(t *testing.T, mock *mockMinioClient) *Client {
	t.Helper()
	client, err := newClientWithMinioClient(context.Background(), mock, mock, "test-bucket")
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestNewClient_BucketMissing(t *testing.T) {
	mock := &mockMinioClient{
		bucketExistsFunc: func(ctx context.Context, bucketName string) (bool, error) {
			return false, nil
		},
	}

	_, err := newClientWithMinioClient(context.Background(), mock, mock, "missing")
	if !errors.Is(err, repository.ErrBucketNotFound) {
		t.Errorf("expected ErrBucketNotFound, got %v", err)
	}
}

func TestClient_Upload(t *testing.T) {
	var gotKey, gotContentType string
	var gotData []byte

	mock := &mockMinioClient{
		putObjectFunc: func(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
			gotKey = objectName
			gotContentType = opts.ContentType
			gotData, _ = io.ReadAll(reader)
			return minio.UploadInfo{}, nil
		},
	}
	client := newTestClient(t, mock)

	err := client.Upload(context.Background(), "landscape/v1.mp4", strings.NewReader("video bytes"), "video/mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "landscape/v1.mp4" {
		t.Errorf("key = %s, expected landscape/v1.mp4", gotKey)
	}
	if gotContentType != "video/mp4" {
		t.Errorf("content type = %s, expected video/mp4", gotContentType)
	}
	if string(gotData) != "video bytes" {
		t.Errorf("uploaded data = %q, expected %q", gotData, "video bytes")
	}
}

func TestClient_Upload_Error(t *testing.T) {
	mock := &mockMinioClient{
		putObjectFunc: func(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
			return minio.UploadInfo{}, errors.New("access denied")
		},
	}
	client := newTestClient(t, mock)

	if err := client.Upload(context.Background(), "k", strings.NewReader("x"), "video/mp4"); err == nil {
		t.Error("expected error when PutObject fails")
	}
}

func TestClient_SignedDownloadURL(t *testing.T) {
	var gotExpiry time.Duration

	mock := &mockMinioClient{
		presignedGetObjectFunc: func(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
			gotExpiry = expiry
			return url.Parse("http://localhost:9000/test-bucket/" + objectName + "?X-Amz-Signature=abc")
		},
	}
	client := newTestClient(t, mock)

	signed, err := client.SignedDownloadURL(context.Background(), "landscape/v1.mp4", 5*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotExpiry != 5*time.Minute {
		t.Errorf("expiry = %v, expected 5m", gotExpiry)
	}
	if !strings.Contains(signed, "X-Amz-Signature") {
		t.Errorf("signed URL should carry a signature parameter, got %s", signed)
	}
}

func TestClient_Download_NotFound(t *testing.T) {
	mock := &mockMinioClient{
		getObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error) {
			return &mockObjectReader{
				statFunc: func() (minio.ObjectInfo, error) {
					return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
				},
			}, nil
		},
	}
	client := newTestClient(t, mock)

	_, err := client.Download(context.Background(), "missing-key")
	if !errors.Is(err, repository.ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestClient_Exists(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		client := newTestClient(t, &mockMinioClient{})
		exists, err := client.Exists(context.Background(), "some-key")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !exists {
			t.Error("expected object to exist")
		}
	})

	t.Run("missing", func(t *testing.T) {
		mock := &mockMinioClient{
			statObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
				return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
			},
		}
		client := newTestClient(t, mock)
		exists, err := client.Exists(context.Background(), "missing-key")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if exists {
			t.Error("expected object to be missing")
		}
	})
}
