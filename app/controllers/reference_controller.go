package controllers

import (
	"net/http"

	"github.com/livraria-escolar/catalog/app/services"
	"github.com/livraria-escolar/catalog/pkg/ctx"
)

// ReferenceController serves the read-only collections the editing form
// draws its choices from.
type ReferenceController struct {
	service *services.CatalogService
}

func NewReferenceController(service *services.CatalogService) *ReferenceController {
	return &ReferenceController{service: service}
}

func (rc *ReferenceController) ReadingPlan(c *ctx.Context) {
	items, err := rc.service.ReadingPlan(c.Context())
	if err != nil {
		c.Log().Error("list reading plan", "error", err)
		c.Fail(http.StatusInternalServerError, "Failed to fetch reading plan", "")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (rc *ReferenceController) Schools(c *ctx.Context) {
	schools, err := rc.service.Schools(c.Context())
	if err != nil {
		c.Log().Error("list schools", "error", err)
		c.Fail(http.StatusInternalServerError, "Failed to fetch schools", "")
		return
	}
	c.JSON(http.StatusOK, schools)
}

// Categories lists categories, filtered by ?type= when present.
func (rc *ReferenceController) Categories(c *ctx.Context) {
	categories, err := rc.service.Categories(c.Context(), c.Query("type"))
	if err != nil {
		c.Log().Error("list categories", "error", err)
		c.Fail(http.StatusInternalServerError, "Failed to fetch categories", "")
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (rc *ReferenceController) Publishers(c *ctx.Context) {
	publishers, err := rc.service.Publishers(c.Context())
	if err != nil {
		c.Log().Error("list publishers", "error", err)
		c.Fail(http.StatusInternalServerError, "Failed to fetch publishers", "")
		return
	}
	c.JSON(http.StatusOK, publishers)
}
