package controllers

import (
	"context"
	"net/http"

	"github.com/livraria-escolar/catalog/pkg/ctx"
)

// ImageStore persists an uploaded image and returns its public URL.
type ImageStore interface {
	UploadImage(ctx context.Context, name string, data []byte) (string, error)
}

type UploadController struct {
	images ImageStore
}

func NewUploadController(images ImageStore) *UploadController {
	return &UploadController{images: images}
}

// Store saves the multipart "file" field to object storage.
func (uc *UploadController) Store(c *ctx.Context) {
	name, data, err := c.File("file")
	if err != nil {
		c.Log().Warn("upload image: read", "error", err)
		c.Fail(http.StatusInternalServerError, "Failed to upload image", err.Error())
		return
	}

	url, err := uc.images.UploadImage(c.Context(), name, data)
	if err != nil {
		c.Log().Error("upload image", "file", name, "error", err)
		c.Fail(http.StatusInternalServerError, "Failed to upload image", err.Error())
		return
	}

	c.Log().Info("image uploaded", "url", url, "bytes", len(data))
	c.JSON(http.StatusCreated, map[string]string{"url": url})
}
