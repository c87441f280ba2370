// Package storage provides the object store used for lead documents.
// Two drivers are available: MinIO (default) and AWS S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"leadflow_backend/platform/config"
)

// Service is the object store used by the lead workflow. Keys are chosen by
// the caller; Sign returns a time-limited GET URL.
type Service interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Sign(ctx context.Context, key string, ttl time.Duration, disposition string) (string, error)
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}

const (
	DriverMinIO = "minio"
	DriverS3    = "s3"
)

// New builds the Service selected by STORAGE_DRIVER and makes sure the bucket exists.
func New(ctx context.Context, cfg config.StorageConfig) (Service, error) {
	switch strings.ToLower(cfg.GetStorageDriver()) {
	case DriverMinIO, "":
		store, err := NewMinIOStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case DriverS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.GetStorageDriver())
	}
}

// AttachmentDisposition renders a Content-Disposition value that makes browsers download the object.
func AttachmentDisposition(fileName string) string {
	name := strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(fileName)
	return fmt.Sprintf(`attachment; filename="%s"`, name)
}
