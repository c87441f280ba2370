package storage

import (
	"fmt"
	"strings"
)

// AllowedContentTypes lists the MIME types accepted for lead documents.
var AllowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,

	"application/pdf":                                                         true,
	"application/msword":                                                      true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel":                                                true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
	"application/zip":                                                         true,
	"image/vnd.dwg":                                                           true,

	"video/mp4":       true,
	"video/quicktime": true,
}

// Policy enforces the upload limits shared by every driver.
type Policy struct {
	maxFileSize int64
}

func NewPolicy(maxFileSize int64) Policy {
	return Policy{maxFileSize: maxFileSize}
}

// ValidateContentType checks if the content type is allowed.
func (p Policy) ValidateContentType(contentType string) error {
	normalized := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	if !AllowedContentTypes[normalized] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

// ValidateFileSize checks if the file size is within limits.
func (p Policy) ValidateFileSize(sizeBytes int64) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if p.maxFileSize > 0 && sizeBytes > p.maxFileSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, p.maxFileSize)
	}
	return nil
}
