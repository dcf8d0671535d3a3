// Package bind decodes HTTP request bodies.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/livraria-escolar/catalog/config"
)

const (
	defaultMaxBodyBytes   = 4 << 20
	defaultMaxUploadBytes = 10 << 20
)

func maxBodyBytes() int64 {
	if n := config.Get().MaxBodyBytes; n > 0 {
		return n
	}
	return defaultMaxBodyBytes
}

func maxUploadBytes() int64 {
	if n := config.Get().MaxUploadBytes; n > 0 {
		return n
	}
	return defaultMaxUploadBytes
}

// Decode reads r.Body as JSON into dest without validating it.
// The body is capped at MAX_BODY_BYTES (default 4 MB).
func Decode(r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// File reads the multipart file in field. The whole request is capped at
// MAX_UPLOAD_BYTES (default 10 MB).
func File(r *http.Request, field string) (name string, data []byte, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes())

	f, hdr, err := r.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, fmt.Errorf("upload too large (max %d bytes)", maxErr.Limit)
		}
		return "", nil, fmt.Errorf("missing file field %q: %w", field, err)
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return hdr.Filename, data, nil
}
