package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// S3Storage implements Storage using Amazon S3 or S3-compatible services
// TODO: Implement using aws-sdk-go-v2
type S3Storage struct {
	bucket   string
	region   string
	endpoint string
	// client *s3.Client // Uncomment when implementing
}

// NewS3Storage creates a new S3 storage instance
// TODO: Initialize S3 client using aws-sdk-go-v2
func NewS3Storage(cfg *Config) (*S3Storage, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.S3Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	return &S3Storage{
		bucket:   cfg.S3Bucket,
		region:   cfg.S3Region,
		endpoint: cfg.S3Endpoint,
	}, nil
}

// Upload stores a file in S3 and returns its metadata
func (s *S3Storage) Upload(ctx context.Context, filename string, contentType string, r io.Reader) (*FileInfo, error) {
	// TODO: Implement S3 upload with PutObject
	return nil, fmt.Errorf("S3 storage not implemented - please set STORAGE_TYPE=local or implement S3Storage")
}

// Open returns a reader for a stored file
func (s *S3Storage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	// TODO: Implement S3 GetObject
	return nil, fmt.Errorf("S3 storage not implemented")
}

// Remove deletes a stored file
func (s *S3Storage) Remove(ctx context.Context, path string) error {
	// TODO: Implement S3 DeleteObject
	return fmt.Errorf("S3 storage not implemented")
}

// PurgeOlderThan removes uploads older than the given age
func (s *S3Storage) PurgeOlderThan(ctx context.Context, age time.Duration) (int, error) {
	// TODO: Implement with ListObjectsV2 + lifecycle comparison
	return 0, fmt.Errorf("S3 storage not implemented")
}
