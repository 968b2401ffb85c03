package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ErrObjectNotFound is returned by Get when the object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// BucketStore stores whole objects in Cloud Storage. The container name maps
// onto a bucket.
type BucketStore struct {
	client *storage.Client
}

// NewBucketStore creates a BucketStore backed by a new storage client.
func NewBucketStore(ctx context.Context) (*BucketStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &BucketStore{client: client}, nil
}

// Put writes data to container/object, replacing any existing object.
func (s *BucketStore) Put(ctx context.Context, container, object string, data []byte, contentType string) error {
	writer := s.client.Bucket(container).Object(object).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		slog.Error("Failed to copy content to GCS object", "bucket", container, "object", object, "error", err)
		return fmt.Errorf("failed to write to GCS: %w", describeGCSError(container, err))
	}
	if err := writer.Close(); err != nil {
		slog.Error("Failed to close GCS writer", "bucket", container, "object", object, "error", err)
		return fmt.Errorf("failed to finalize GCS write: %w", describeGCSError(container, err))
	}
	return nil
}

// Get reads container/object in full.
func (s *BucketStore) Get(ctx context.Context, container, object string) ([]byte, error) {
	reader, err := s.client.Bucket(container).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("gs://%s/%s: %w", container, object, ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", container, object, describeGCSError(container, err))
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", container, object, err)
	}
	return data, nil
}

// Locator returns the gs:// URI of container/object.
func (s *BucketStore) Locator(container, object string) string {
	return fmt.Sprintf("gs://%s/%s", container, object)
}

func (s *BucketStore) Close() error {
	return s.client.Close()
}

// describeGCSError adds the bucket name to the common permission and
// missing-bucket API failures.
func describeGCSError(bucket string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch gerr.Code {
	case http.StatusNotFound:
		return fmt.Errorf("bucket %q not found: %w", bucket, err)
	case http.StatusForbidden, http.StatusUnauthorized:
		return fmt.Errorf("access to bucket %q denied: %w", bucket, err)
	}
	return err
}
