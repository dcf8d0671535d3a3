package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"
)

// ImageKeyPrefix is the folder product images are stored under.
const ImageKeyPrefix = "products/"

// Uploader stores product images on a disk under timestamp-qualified keys.
type Uploader struct {
	disk Disk
	now  func() time.Time
}

// NewUploader returns an Uploader writing to disk.
func NewUploader(disk Disk) *Uploader {
	return &Uploader{disk: disk, now: time.Now}
}

// ImageKey builds "products/<unix-millis>_<name>". Directory parts of name
// are dropped.
func ImageKey(at time.Time, name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = "image"
	}
	return fmt.Sprintf("%s%d_%s", ImageKeyPrefix, at.UnixMilli(), base)
}

// UploadImage writes data and returns its durable URL.
func (u *Uploader) UploadImage(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("storage: empty upload")
	}
	key := ImageKey(u.now(), name)
	if err := u.disk.Put(ctx, key, bytes.NewReader(data), http.DetectContentType(data)); err != nil {
		return "", err
	}
	return u.disk.URL(key), nil
}
