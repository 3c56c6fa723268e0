// Package gcs stores uploaded statement PDFs in Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
)

// Storage wraps a GCS client scoped to a single bucket.
type Storage struct {
	client *storage.Client
	bucket string
}

// New creates a Storage for the given bucket.
func New(ctx context.Context, bucket string) (*Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs.New: creating storage client: %w", err)
	}
	return &Storage{client: client, bucket: bucket}, nil
}

// Close releases the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}

// Bucket returns the bucket this storage writes to.
func (s *Storage) Bucket() string {
	return s.bucket
}

// Upload streams r into the bucket under objectName and returns the
// resulting gs:// URI.
func (s *Storage) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", fmt.Errorf("Upload: writing %s: %w", objectName, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Upload: closing writer for %s: %w", objectName, err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

// Fetch downloads the object behind a gs:// URI.
func (s *Storage) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, object, err := parseURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: opening %s: %w", gcsURI, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading %s: %w", gcsURI, err)
	}
	return data, nil
}

// FilenameFromURI extracts the base filename from a gs:// URI.
// e.g. "gs://bucket/folder/file.pdf" -> "file.pdf".
func FilenameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

func parseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("not a gs:// URI: %q", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed gs:// URI: %q", uri)
	}
	return parts[0], parts[1], nil
}
