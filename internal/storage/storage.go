// Package storage persists uploaded media bytes. The local backend writes
// under a directory served at a fixed URL prefix; the S3 backend targets
// any S3-compatible object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"folio/internal/config"
)

// LocalPrefix is the URL path locally stored media is served under.
const LocalPrefix = "/uploads"

// Storage stores objects by key and resolves their public URL.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New returns the backend selected by cfg.MediaStorage.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.MediaStorage {
	case "", "local":
		return NewLocal(cfg.UploadDir, LocalPrefix)
	case "s3":
		return NewS3(S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown media storage %q", cfg.MediaStorage)
	}
}

// ExtensionFromType returns a file extension for known MIME types.
func ExtensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}

// cleanKey rejects path traversal and absolute keys by reducing key to a
// clean relative path.
func cleanKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}
