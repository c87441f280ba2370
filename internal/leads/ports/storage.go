// Package ports defines the interfaces that the leads domain requires from
// external systems. Implementations are wired by the composition root.
package ports

import (
	"context"
	"io"
	"time"
)

// ObjectStore persists uploaded lead documents. Keys are chosen by the caller.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Sign(ctx context.Context, key string, ttl time.Duration, disposition string) (string, error)
}

// UploadPolicy rejects files before anything is written.
type UploadPolicy interface {
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}
