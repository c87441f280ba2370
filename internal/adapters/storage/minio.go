package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"leadflow_backend/platform/config"
)

// MinIOStore implements Service using MinIO.
type MinIOStore struct {
	client *minio.Client
	bucket string
	Policy
}

// NewMinIOStore creates a MinIO-backed store for the configured bucket.
func NewMinIOStore(cfg config.StorageConfig) (*MinIOStore, error) {
	if cfg.GetStorageEndpoint() == "" {
		return nil, fmt.Errorf("STORAGE_ENDPOINT is required for the minio driver")
	}

	client, err := minio.New(cfg.GetStorageEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetStorageAccessKey(), cfg.GetStorageSecretKey(), ""),
		Secure: cfg.GetStorageUseSSL(),
		Region: cfg.GetStorageRegion(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOStore{
		client: client,
		bucket: cfg.GetStorageBucket(),
		Policy: NewPolicy(cfg.GetStorageMaxFileSize()),
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinIOStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return nil
}

func (s *MinIOStore) Sign(ctx context.Context, key string, ttl time.Duration, disposition string) (string, error) {
	params := make(url.Values)
	if disposition != "" {
		params.Set("response-content-disposition", disposition)
	}

	signed, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, params)
	if err != nil {
		return "", fmt.Errorf("failed to sign object %s: %w", key, err)
	}
	return signed.String(), nil
}
