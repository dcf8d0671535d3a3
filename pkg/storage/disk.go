// Package storage is the object-storage layer used for product images.
//
// Two drivers are available:
//   - "local" writes under a directory that the HTTP kernel serves at /storage
//   - "s3"    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Quick start:
//
//	disk, err := storage.New(ctx, config.Get())
//	up := storage.NewUploader(disk)
//	url, err := up.UploadImage(ctx, "capa.jpg", data)
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/livraria-escolar/catalog/config"
)

// Disk is the driver interface. Paths are slash-separated keys.
type Disk interface {
	// Put writes r to path, replacing any existing object.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error

	// Get returns the full content of the object at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether an object exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes an object. Returns nil if it did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the durable public URL for path.
	URL(path string) string
}

// New builds the disk selected by STORAGE_DISK.
func New(ctx context.Context, cfg *config.Config) (Disk, error) {
	switch cfg.StorageDisk {
	case "", "local":
		return NewLocal(cfg.StorageLocalRoot, cfg.StorageURL), nil
	case "s3":
		d, err := NewS3(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Endpoint: cfg.S3Endpoint,
			URL:      cfg.S3URL,
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("storage: unknown disk %q", cfg.StorageDisk)
}
